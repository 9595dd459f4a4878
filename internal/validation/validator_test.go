// TRIP Server - Trip Recording and Itinerary Planning
// Copyright 2026 Frank Dean (frankdean)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/frankdean/trip-server-sub001

package validation

import (
	"strings"
	"testing"
)

type nicknameCase struct {
	Nickname string `validate:"required,tripnickname"`
}

type nameCase struct {
	Name string `validate:"required,tripname"`
}

type emailCase struct {
	Email string `validate:"required,email"`
}

func TestNicknameValidation(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"simple", "hiker42", false},
		{"punctuation allowed", "trail-runner_9!", false},
		{"unicode letters", "wanderer·café", false},
		{"empty", "", true},
		{"space", "two words", true},
		{"comma", "a,b", true},
		{"semicolon", "a;b", true},
		{"forward slash", "a/b", true},
		{"backslash", `a\b`, true},
		{"double quote", `a"b`, true},
		{"single quote", "a'b", true},
		{"angle brackets", "<script>", true},
		{"control character", "tab\there", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&nicknameCase{Nickname: tt.value})
			if tt.wantErr && err == nil {
				t.Errorf("nickname %q: expected error, got nil", tt.value)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("nickname %q: unexpected error = %v", tt.value, err)
			}
		})
	}
}

func TestNameValidation(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"plain", "Frank", false},
		{"with space", "Mary Anne", false},
		{"accented", "José", false},
		{"empty", "", true},
		{"newline", "Frank\nDean", true},
		{"tab", "Frank\tDean", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&nameCase{Name: tt.value})
			if tt.wantErr && err == nil {
				t.Errorf("name %q: expected error, got nil", tt.value)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("name %q: unexpected error = %v", tt.value, err)
			}
		})
	}
}

func TestEmailValidation(t *testing.T) {
	if err := ValidateStruct(&emailCase{Email: "user@trip.test"}); err != nil {
		t.Errorf("valid email rejected: %v", err)
	}
	if err := ValidateStruct(&emailCase{Email: "not-an-email"}); err == nil {
		t.Error("invalid email accepted")
	}
}

func TestToAPIErrorSingleField(t *testing.T) {
	err := ValidateStruct(&emailCase{Email: ""})
	if err == nil {
		t.Fatal("expected validation error")
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Code = %q, want VALIDATION_ERROR", apiErr.Code)
	}
	if apiErr.Details["field"] != "Email" {
		t.Errorf("Details[field] = %v, want Email", apiErr.Details["field"])
	}
}

func TestToAPIErrorMultipleFields(t *testing.T) {
	type multi struct {
		Email    string `validate:"required,email"`
		Nickname string `validate:"required,tripnickname"`
	}

	err := ValidateStruct(&multi{})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if len(err.Errors()) != 2 {
		t.Fatalf("expected 2 field errors, got %d", len(err.Errors()))
	}

	apiErr := err.ToAPIError()
	if !strings.Contains(apiErr.Message, "Email") || !strings.Contains(apiErr.Message, "Nickname") {
		t.Errorf("combined message missing fields: %q", apiErr.Message)
	}
}
