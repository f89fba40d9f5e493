// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"strings"
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

func TestFormatError_Nil(t *testing.T) {
	t.Parallel()

	if err := FormatError(nil, "config.cue"); err != nil {
		t.Errorf("FormatError(nil) = %v, want nil", err)
	}
}

func TestFormatError_PlainError(t *testing.T) {
	t.Parallel()

	base := errors.New("boom")
	err := FormatError(base, "config.cue")
	if !errors.Is(err, base) {
		t.Errorf("FormatError should wrap non-CUE errors, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "config.cue: ") {
		t.Errorf("error %q should be prefixed with the file path", err)
	}
}

func TestFormatError_IncludesPath(t *testing.T) {
	t.Parallel()

	ctx := cuecontext.New()
	schema := ctx.CompileString(`#C: { dev?: { port?: int & <=65535 } }`).LookupPath(cue.ParsePath("#C"))
	user := ctx.CompileString(`dev: port: 70000`)

	verr := schema.Unify(user).Validate(cue.Concrete(false))
	if verr == nil {
		t.Fatal("expected validation error")
	}

	err := FormatError(verr, "config.cue")
	if !strings.Contains(err.Error(), "config.cue: dev.port") {
		t.Errorf("error %q should name the field path", err)
	}
	if strings.Contains(err.Error(), "#C") {
		t.Errorf("error %q should not name the schema definition", err)
	}
}

func TestFormatPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path []string
		want string
	}{
		{nil, ""},
		{[]string{"dev"}, "dev"},
		{[]string{"dev", "port"}, "dev.port"},
		{[]string{"dist", "extensions", "1"}, "dist.extensions[1]"},
		{[]string{"0"}, "0"},
		{[]string{"#Config", "dev", "port"}, "dev.port"},
		{[]string{"#Config"}, ""},
	}

	for _, tt := range tests {
		if got := formatPath(tt.path); got != tt.want {
			t.Errorf("formatPath(%v) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestCheckFileSize(t *testing.T) {
	t.Parallel()

	if err := CheckFileSize(make([]byte, 10), 10, "a.cue"); err != nil {
		t.Errorf("at limit: unexpected error %v", err)
	}
	err := CheckFileSize(make([]byte, 11), 10, "a.cue")
	if err == nil || !strings.Contains(err.Error(), "exceeds maximum") {
		t.Errorf("over limit: got %v", err)
	}
}
