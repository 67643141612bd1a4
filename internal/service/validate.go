package service

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/disgoorg/snowflake/v2"
	"github.com/go-playground/validator/v10"
	"github.com/immxrtalbeast/tempvoice/internal/domain"
)

const (
	DefaultMaxNameLength = 100
	DefaultMaxUserLimit  = 99
)

func newValidator() *validator.Validate {
	v := validator.New()
	// Room names may be any script but must not contain control characters.
	_ = v.RegisterValidation("roomname", func(fl validator.FieldLevel) bool {
		name := fl.Field().String()
		if strings.TrimSpace(name) == "" {
			return false
		}
		return strings.IndexFunc(name, unicode.IsControl) < 0
	})
	return v
}

func (s *RoomService) validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	tag := fmt.Sprintf("required,max=%d,roomname", s.opts.MaxNameLength)
	if err := s.validate.Var(name, tag); err != nil {
		return "", domain.Fail(domain.ErrValidationFailed, "name must be 1 to %d characters without control characters", s.opts.MaxNameLength)
	}
	return name, nil
}

func (s *RoomService) validateLimit(limit int) error {
	tag := fmt.Sprintf("min=0,max=%d", s.opts.MaxUserLimit)
	if err := s.validate.Var(limit, tag); err != nil {
		return domain.Fail(domain.ErrValidationFailed, "limit must be between 0 and %d", s.opts.MaxUserLimit)
	}
	return nil
}

// validateTarget checks that target is a well formed user id.
func validateTarget(target string) error {
	if _, err := snowflake.Parse(target); err != nil {
		return domain.Fail(domain.ErrValidationFailed, "%q is not a user id", target)
	}
	return nil
}
