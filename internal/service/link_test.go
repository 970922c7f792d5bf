package service

import "testing"

func TestFileURL(t *testing.T) {
	tests := []struct {
		name string
		base string
		doc  string
		want string
	}{
		{
			name: "relative base",
			base: "/files",
			doc:  "DocB",
			want: "/files/DocB.pdf",
		},
		{
			name: "spaces",
			base: "http://localhost:8080/files",
			doc:  "Perka 5 Tahun 2020",
			want: "http://localhost:8080/files/Perka%205%20Tahun%202020.pdf",
		},
		{
			name: "trailing slash on base",
			base: "https://docs.example.com/files/",
			doc:  "SE",
			want: "https://docs.example.com/files/SE.pdf",
		},
		{
			name: "already has extension",
			base: "/files",
			doc:  "DocA.pdf",
			want: "/files/DocA.pdf.pdf",
		},
		{
			name: "reserved characters",
			base: "/files",
			doc:  "A/B & C?#",
			want: "/files/A%2FB%20%26%20C%3F%23.pdf",
		},
		{
			name: "unreserved punctuation",
			base: "/files",
			doc:  "Lampiran (I) *final*!'~",
			want: "/files/Lampiran%20(I)%20*final*!'~.pdf",
		},
		{
			name: "non-ascii",
			base: "/files",
			doc:  "Peraturan é",
			want: "/files/Peraturan%20%C3%A9.pdf",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FileURL(tt.base, tt.doc); got != tt.want {
				t.Errorf("FileURL(%q, %q) = %q, want %q", tt.base, tt.doc, got, tt.want)
			}
		})
	}
}
