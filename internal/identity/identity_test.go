package identity

import "testing"

func TestResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		managedEmail string
		tokenEmail   string
		wantEmail    string
		wantSource   Source
		wantAuthed   bool
	}{
		{
			name:         "managed wins over token",
			managedEmail: "a@x.com",
			tokenEmail:   "b@x.com",
			wantEmail:    "a@x.com",
			wantSource:   SourceManaged,
			wantAuthed:   true,
		},
		{
			name:       "token only",
			tokenEmail: "b@x.com",
			wantEmail:  "b@x.com",
			wantSource: SourceToken,
			wantAuthed: true,
		},
		{
			name:         "managed only",
			managedEmail: "a@x.com",
			wantEmail:    "a@x.com",
			wantSource:   SourceManaged,
			wantAuthed:   true,
		},
		{
			name:       "neither yields unauthenticated",
			wantAuthed: false,
		},
		{
			name:         "emails are lowercased",
			managedEmail: "Alice@Example.COM",
			wantEmail:    "alice@example.com",
			wantSource:   SourceManaged,
			wantAuthed:   true,
		},
		{
			name:         "whitespace-only managed email falls through to token",
			managedEmail: "   ",
			tokenEmail:   "b@x.com",
			wantEmail:    "b@x.com",
			wantSource:   SourceToken,
			wantAuthed:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			id := Resolve(tt.managedEmail, tt.tokenEmail)

			if id.IsAuthenticated() != tt.wantAuthed {
				t.Fatalf("IsAuthenticated() = %v, want %v", id.IsAuthenticated(), tt.wantAuthed)
			}
			if id.Email != tt.wantEmail {
				t.Errorf("Email = %q, want %q", id.Email, tt.wantEmail)
			}
			if tt.wantAuthed && id.Source != tt.wantSource {
				t.Errorf("Source = %q, want %q", id.Source, tt.wantSource)
			}
		})
	}
}

func TestOwnerEmails(t *testing.T) {
	t.Parallel()

	managed, token := OwnerEmails("A@X.com", " b@x.com ")
	if managed != "a@x.com" {
		t.Errorf("managed = %q, want %q", managed, "a@x.com")
	}
	if token != "b@x.com" {
		t.Errorf("token = %q, want %q", token, "b@x.com")
	}

	managed, token = OwnerEmails("", "")
	if managed != "" || token != "" {
		t.Errorf("expected empty pair, got %q, %q", managed, token)
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	if got := Normalize("  User@Example.Com "); got != "user@example.com" {
		t.Errorf("Normalize() = %q", got)
	}
	if got := Normalize(""); got != "" {
		t.Errorf("Normalize(\"\") = %q", got)
	}
}
