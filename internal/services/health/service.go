package health

// Service encapsulates health-related checks.
type Service struct {
	model     string
	transport string
	store     string
}

// Status is the health payload.
type Status struct {
	OK        bool   `json:"ok"`
	Model     string `json:"model"`
	Transport string `json:"transport"`
	Store     string `json:"store"`
}

// NewService constructs a new health service.
func NewService(model, transport, store string) *Service {
	return &Service{model: model, transport: transport, store: store}
}

// Status reports the process as up along with the active provider settings.
func (s *Service) Status() Status {
	return Status{OK: true, Model: s.model, Transport: s.transport, Store: s.store}
}
