package bind_test

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/smartshelf/shelfweb/pkg/bind"
	"github.com/smartshelf/shelfweb/pkg/validate"
)

type input struct {
	Name  string `json:"name"  validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

func TestJSONValid(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"Ann","email":"ann@example.com"}`))
	var in input
	if err := bind.JSON(req, &in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.Name != "Ann" {
		t.Errorf("expected Ann, got %q", in.Name)
	}
}

func TestJSONValidationError(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":""}`))
	var in input
	err := bind.JSON(req, &in)

	var verr *validate.Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected *validate.Error, got %v", err)
	}
	if _, ok := verr.Fields["email"]; !ok {
		t.Errorf("expected email error, got %v", verr.Fields)
	}
}

func TestJSONMalformed(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":`))
	var in input
	if err := bind.JSON(req, &in); !errors.Is(err, bind.ErrBadRequest) {
		t.Errorf("expected ErrBadRequest, got %v", err)
	}
}

func TestDecodeEmptyBody(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(""))
	var in input
	if err := bind.Decode(req, &in); err != nil {
		t.Errorf("empty body should decode to zero value, got %v", err)
	}
}
