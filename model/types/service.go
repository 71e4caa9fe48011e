package types

// Service is an integration module exposing named, typed methods. Every
// connector, utility and intelligence facade registered with the runtime
// implements this contract.
type Service interface {
	Name() string
	Methods() Signatures
	Method(name string) (Executable, error)
}

// Proxy decorates a base service, e.g. to add metering or auditing.
type Proxy func(base Service) Service
