// Edgewatch - CDN Cache Load and Bandwidth Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/edgewatch

package validation

import (
	"strings"
	"testing"
)

// ===================================================================================================
// Singleton Validator Tests
// ===================================================================================================

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()

	if v1 != v2 {
		t.Error("GetValidator() should return the same singleton instance")
	}
	if v1 == nil {
		t.Error("GetValidator() should not return nil")
	}
}

// ===================================================================================================
// ValidateStruct Tests
// ===================================================================================================

type rangeParams struct {
	Start string `query:"start" validate:"omitempty,isodate"`
	End   string `query:"end" validate:"omitempty,isodate"`
}

type cityParams struct {
	City  string `query:"city" validate:"required,label,max=64"`
	Start string `query:"start" validate:"omitempty,isodate"`
	End   string `query:"end" validate:"omitempty,isodate"`
}

type groupParams struct {
	GroupBy string `query:"group_by" validate:"required,oneof=region city"`
	Limit   int    `query:"limit" validate:"min=0,max=2000"`
}

func TestValidateStruct_Valid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input interface{}
	}{
		{"empty range", &rangeParams{}},
		{"full range", &rangeParams{Start: "2024-01-01", End: "2024-01-31"}},
		{"city", &cityParams{City: "Chicago"}},
		{"city with spaces", &cityParams{City: "Sao Paulo", Start: "2023-08-08"}},
		{"city with punctuation", &cityParams{City: "St. John's"}},
		{"underscore region", &cityParams{City: "North_America"}},
		{"unicode city", &cityParams{City: "Zürich"}},
		{"group by region", &groupParams{GroupBy: "region", Limit: 288}},
		{"group by city", &groupParams{GroupBy: "city"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if err := ValidateStruct(tt.input); err != nil {
				t.Errorf("ValidateStruct() unexpected error: %v", err)
			}
		})
	}
}

func TestValidateStruct_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     interface{}
		wantField string
		wantTag   string
	}{
		{"bad start format", &rangeParams{Start: "01/02/2024"}, "start", "isodate"},
		{"impossible date", &rangeParams{End: "2024-02-30"}, "end", "isodate"},
		{"timestamp instead of date", &rangeParams{Start: "2024-01-01T00:00:00Z"}, "start", "isodate"},
		{"missing city", &cityParams{}, "city", "required"},
		{"city with markup", &cityParams{City: "<script>"}, "city", "label"},
		{"city too long", &cityParams{City: strings.Repeat("a", 65)}, "city", "max"},
		{"unknown group by", &groupParams{GroupBy: "host"}, "group_by", "oneof"},
		{"limit too large", &groupParams{GroupBy: "city", Limit: 5000}, "limit", "max"},
		{"negative limit", &groupParams{GroupBy: "city", Limit: -1}, "limit", "min"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateStruct(tt.input)
			if err == nil {
				t.Fatal("ValidateStruct() expected error, got nil")
			}
			errs := err.Errors()
			if len(errs) != 1 {
				t.Fatalf("got %d errors, want 1: %v", len(errs), err)
			}
			if errs[0].Field() != tt.wantField {
				t.Errorf("Field() = %q, want %q", errs[0].Field(), tt.wantField)
			}
			if errs[0].Tag() != tt.wantTag {
				t.Errorf("Tag() = %q, want %q", errs[0].Tag(), tt.wantTag)
			}
		})
	}
}

// ===================================================================================================
// APIError Conversion Tests
// ===================================================================================================

func TestToAPIError_SingleError(t *testing.T) {
	t.Parallel()

	err := ValidateStruct(&rangeParams{Start: "yesterday"})
	if err == nil {
		t.Fatal("expected validation error")
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Code = %q, want VALIDATION_ERROR", apiErr.Code)
	}
	if apiErr.Message != "start must be a date in YYYY-MM-DD format" {
		t.Errorf("Message = %q", apiErr.Message)
	}
	if apiErr.Details["field"] != "start" {
		t.Errorf("Details[field] = %v, want start", apiErr.Details["field"])
	}
	if apiErr.Details["value"] != "yesterday" {
		t.Errorf("Details[value] = %v, want yesterday", apiErr.Details["value"])
	}
}

func TestToAPIError_MultipleErrors(t *testing.T) {
	t.Parallel()

	err := ValidateStruct(&cityParams{Start: "x", End: "y"})
	if err == nil {
		t.Fatal("expected validation error")
	}

	apiErr := err.ToAPIError()
	fields, ok := apiErr.Details["fields"].([]map[string]interface{})
	if !ok {
		t.Fatalf("Details[fields] has type %T", apiErr.Details["fields"])
	}
	if len(fields) != 3 {
		t.Errorf("got %d field errors, want 3", len(fields))
	}
	for _, want := range []string{"city: city is required", "start:", "end:"} {
		if !strings.Contains(apiErr.Message, want) {
			t.Errorf("Message %q does not contain %q", apiErr.Message, want)
		}
	}
}

func TestToAPIError_Empty(t *testing.T) {
	t.Parallel()

	apiErr := (&RequestValidationError{}).ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" || apiErr.Message != "Validation failed" {
		t.Errorf("ToAPIError() = %+v", apiErr)
	}
}

// ===================================================================================================
// Error Message Tests
// ===================================================================================================

func TestErrorMessages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input interface{}
		want  string
	}{
		{"required", &cityParams{}, "city is required"},
		{"oneof", &groupParams{GroupBy: "cell"}, "group_by must be one of: region city"},
		{"string max", &cityParams{City: strings.Repeat("b", 70)}, "city must be at most 64 characters"},
		{"numeric max", &groupParams{GroupBy: "region", Limit: 2001}, "limit must be at most 2000"},
		{"label", &cityParams{City: "a;b"}, "city contains characters not allowed in a region or city name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateStruct(tt.input)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if got := err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}
