package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

type DomainErrorsSuite struct {
	suite.Suite
}

func TestDomainErrorsSuite(t *testing.T) {
	suite.Run(t, new(DomainErrorsSuite))
}

func (s *DomainErrorsSuite) TestErrorString() {
	s.Run("returns message when present", func() {
		err := &Error{Code: CodeInvalidInput, Message: "wallet address must be 60 uppercase letters"}
		s.Equal("wallet address must be 60 uppercase letters", err.Error())
	})

	s.Run("falls back to code", func() {
		err := &Error{Code: CodeForbidden}
		s.Equal("forbidden", err.Error())
	})
}

func (s *DomainErrorsSuite) TestUnwrap() {
	inner := errors.New("connection reset")
	err := &Error{Code: CodeInternal, Message: "persist record", Err: inner}
	s.Equal(inner, errors.Unwrap(err))
	s.Nil((&Error{Code: CodeNotFound}).Unwrap())
}

func (s *DomainErrorsSuite) TestIs() {
	s.Run("matches by code only", func() {
		s.True(errors.Is(New(CodeNotFound, "snapshot missing"), &Error{Code: CodeNotFound}))
	})

	s.Run("different codes do not match", func() {
		s.False(errors.Is(New(CodeNotFound, "x"), &Error{Code: CodeInternal}))
	})

	s.Run("plain errors do not match", func() {
		err := &Error{Code: CodeNotFound}
		s.False(err.Is(errors.New("not found")))
	})

	s.Run("matches through fmt wrapping", func() {
		wrapped := fmt.Errorf("load: %w", New(CodeNotFound, "snapshot missing"))
		s.True(errors.Is(wrapped, &Error{Code: CodeNotFound}))
	})
}

func (s *DomainErrorsSuite) TestWrap() {
	s.Run("keeps existing domain code", func() {
		wrapped := Wrap(New(CodeForbidden, "caller is not admin"), CodeInternal, "set status")
		s.True(HasCode(wrapped, CodeForbidden))
		s.Equal("set status", wrapped.Error())
	})

	s.Run("applies code to plain errors", func() {
		root := errors.New("dial tcp: refused")
		wrapped := Wrap(root, CodeInternal, "save record")
		s.True(HasCode(wrapped, CodeInternal))
		s.ErrorIs(wrapped, root)
	})
}

func (s *DomainErrorsSuite) TestHasCode() {
	s.False(HasCode(nil, CodeNotFound))
	s.False(HasCode(errors.New("plain"), CodeNotFound))
	s.True(HasCode(New(CodeUnauthorized, "missing caller"), CodeUnauthorized))
}

func (s *DomainErrorsSuite) TestCodeOf() {
	s.Equal(CodeTimeout, CodeOf(fmt.Errorf("op: %w", New(CodeTimeout, "deadline"))))
	s.Equal(CodeInternal, CodeOf(errors.New("boom")))
}
