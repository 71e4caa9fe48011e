package logger

import (
	"context"
	"fmt"
	"log"
	"reflect"
	"strings"

	"github.com/atomhq/atom/model/types"
)

const name = "logger"

// Service prints diagnostic messages from pipeline steps.
type Service struct{}

type Input struct {
	Message string
	// Level is one of info (default), warn or error.
	Level string
}

type Output struct {
}

// New creates a new logger service
func New() *Service {
	return &Service{}
}

// Name returns the service name
func (s *Service) Name() string {
	return name
}

// Methods returns the service methods
func (s *Service) Methods() types.Signatures {
	return []types.Signature{
		{
			Name:        "print",
			Description: "Logs the given message.",
			Input:       reflect.TypeOf(&Input{}),
			Output:      reflect.TypeOf(&Output{}),
		},
	}
}

// Method returns the specified method
func (s *Service) Method(name string) (types.Executable, error) {
	switch strings.ToLower(name) {
	case "print":
		return s.print, nil
	default:
		return nil, types.NewMethodNotFoundError(name)
	}
}

func (s *Service) print(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*Input)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	level := strings.ToLower(input.Level)
	switch level {
	case "", "info":
		log.Println(input.Message)
	default:
		log.Println(fmt.Sprintf("[%s] %s", strings.ToUpper(level), input.Message))
	}
	return nil
}
