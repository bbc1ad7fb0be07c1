package validator

import (
	"encoding/json"
	"testing"
)

func validCreateRequest() *CreateUserRequest {
	return &CreateUserRequest{
		Username:  "john.doe",
		Email:     "john@example.com",
		FirstName: "John",
		LastName:  "Doe",
		Name:      "John Doe",
	}
}

func TestValidateUserCreate(t *testing.T) {
	v := New()

	t.Run("valid request", func(t *testing.T) {
		if errs := v.ValidateUserCreate(validCreateRequest()); errs != nil {
			t.Fatalf("unexpected validation errors: %v", errs)
		}
	})

	t.Run("missing required fields", func(t *testing.T) {
		errs := v.ValidateUserCreate(&CreateUserRequest{})
		if len(errs) == 0 {
			t.Fatal("expected validation errors for empty request")
		}
	})

	t.Run("username charset", func(t *testing.T) {
		req := validCreateRequest()
		req.Username = "john doe"
		if errs := v.ValidateUserCreate(req); len(errs) == 0 {
			t.Fatal("expected error for username with space")
		}

		req.Username = "john.doe@corp+x_1-2"
		if errs := v.ValidateUserCreate(req); errs != nil {
			t.Fatalf("unexpected errors for allowed charset: %v", errs)
		}
	})

	t.Run("bad email", func(t *testing.T) {
		req := validCreateRequest()
		req.Email = "not-an-email"
		if errs := v.ValidateUserCreate(req); len(errs) == 0 {
			t.Fatal("expected error for malformed email")
		}
	})

	t.Run("platform role values", func(t *testing.T) {
		for _, role := range []string{"Super Platform Admin", "Platform Admin", "Studio Admin", "Learner"} {
			role := role
			req := validCreateRequest()
			req.PlatformRole = &role
			if errs := v.ValidateUserCreate(req); errs != nil {
				t.Fatalf("unexpected errors for role %q: %v", role, errs)
			}
		}

		bad := "Janitor"
		req := validCreateRequest()
		req.PlatformRole = &bad
		if errs := v.ValidateUserCreate(req); len(errs) == 0 {
			t.Fatal("expected error for unknown role")
		}
	})

	t.Run("year of birth range", func(t *testing.T) {
		year := 1899
		req := validCreateRequest()
		req.YearOfBirth = &year
		if errs := v.ValidateUserCreate(req); len(errs) == 0 {
			t.Fatal("expected error for year before 1900")
		}

		year = 1990
		if errs := v.ValidateUserCreate(req); errs != nil {
			t.Fatalf("unexpected errors for valid year: %v", errs)
		}
	})

	t.Run("analytics access values", func(t *testing.T) {
		bad := "Everything"
		req := validCreateRequest()
		req.AnalyticsAccess = OptionalString{Set: true, Value: &bad}
		if errs := v.ValidateUserCreate(req); len(errs) == 0 {
			t.Fatal("expected error for unknown analytics access")
		}

		full := "Full Access"
		req.AnalyticsAccess = OptionalString{Set: true, Value: &full}
		if errs := v.ValidateUserCreate(req); errs != nil {
			t.Fatalf("unexpected errors for full access: %v", errs)
		}

		req.AnalyticsAccess = OptionalString{Set: true, Value: nil}
		if errs := v.ValidateUserCreate(req); errs != nil {
			t.Fatalf("unexpected errors for explicit null: %v", errs)
		}
	})
}

func TestOptionalStringUnmarshal(t *testing.T) {
	type body struct {
		AnalyticsAccess OptionalString `json:"analytics_access"`
	}

	tests := []struct {
		name      string
		payload   string
		wantSet   bool
		wantValue *string
	}{
		{name: "absent", payload: `{}`, wantSet: false},
		{name: "null", payload: `{"analytics_access": null}`, wantSet: true},
		{name: "value", payload: `{"analytics_access": "Restricted"}`, wantSet: true, wantValue: func() *string { s := "Restricted"; return &s }()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b body
			if err := json.Unmarshal([]byte(tt.payload), &b); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if b.AnalyticsAccess.Set != tt.wantSet {
				t.Errorf("Set = %v, want %v", b.AnalyticsAccess.Set, tt.wantSet)
			}
			if tt.wantValue == nil && b.AnalyticsAccess.Value != nil {
				t.Errorf("Value = %q, want nil", *b.AnalyticsAccess.Value)
			}
			if tt.wantValue != nil && (b.AnalyticsAccess.Value == nil || *b.AnalyticsAccess.Value != *tt.wantValue) {
				t.Errorf("Value = %v, want %q", b.AnalyticsAccess.Value, *tt.wantValue)
			}
		})
	}
}

func TestDateUnmarshal(t *testing.T) {
	t.Run("day-only value", func(t *testing.T) {
		var req UpdateUserRequest
		if err := json.Unmarshal([]byte(`{"hire_date": "2020-03-15"}`), &req); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if req.HireDate == nil {
			t.Fatal("expected hire_date to be set")
		}
		if got := req.HireDate.Format("2006-01-02"); got != "2020-03-15" {
			t.Errorf("hire_date = %s, want 2020-03-15", got)
		}
	})

	t.Run("null leaves zero date", func(t *testing.T) {
		var req UpdateUserRequest
		if err := json.Unmarshal([]byte(`{"hire_date": null}`), &req); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if req.HireDate != nil {
			t.Errorf("hire_date = %v, want nil", req.HireDate)
		}
	})

	t.Run("timestamp rejected", func(t *testing.T) {
		var req CreateUserRequest
		if err := json.Unmarshal([]byte(`{"hire_date": "2020-03-15T00:00:00Z"}`), &req); err == nil {
			t.Fatal("expected error for timestamp payload")
		}
	})

	t.Run("round-trips as day only", func(t *testing.T) {
		d := &Date{}
		if err := json.Unmarshal([]byte(`"2020-03-15"`), d); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		out, err := json.Marshal(d)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if string(out) != `"2020-03-15"` {
			t.Errorf("marshal = %s, want %q", out, "2020-03-15")
		}
	})
}
