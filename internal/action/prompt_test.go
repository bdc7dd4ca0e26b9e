package action

import "testing"

func TestBuildPrompt(t *testing.T) {
	tests := []struct {
		name                     string
		persona, prior, question string
		want                     string
	}{
		{"question only", "", "", "What is Go?", "What is Go?"},
		{"with persona", "Be concise.", "", "What is Go?", "Be concise.\n\n---\n\nWhat is Go?"},
		{"with context", "", "Go is a language.", "Who made it?",
			"Konteks sebelumnya:\n\"\"\"\nGo is a language.\n\"\"\"\n\nPertanyaan saat ini:\nWho made it?"},
		{"all parts", "P", "C", "Q",
			"P\n\n---\n\nKonteks sebelumnya:\n\"\"\"\nC\n\"\"\"\n\nPertanyaan saat ini:\nQ"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildPrompt(tt.persona, tt.prior, tt.question); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}
