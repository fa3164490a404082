package assets

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateAssetName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"builtin layout", LayoutDocument, nil},
		{"hyphen", "dark-card", nil},
		{"underscore and digits", "card_v2", nil},
		{"max length", strings.Repeat("a", MaxAssetNameLength), nil},

		{"empty", "", ErrInvalidAssetName},
		{"too long", strings.Repeat("a", MaxAssetNameLength+1), ErrInvalidAssetName},
		{"forward slash", "layouts/document", ErrInvalidAssetName},
		{"backslash", "layouts\\document", ErrInvalidAssetName},
		{"parent traversal", "../secret", ErrInvalidAssetName},
		{"extension", "document.html", ErrInvalidAssetName},
		{"hidden file", ".hidden", ErrInvalidAssetName},
		{"space", "my layout", ErrInvalidAssetName},
		{"newline", "doc\nument", ErrInvalidAssetName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateAssetName(tt.input)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateAssetName(%q) unexpected error: %v", tt.input, err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateAssetName(%q) error = %v, want %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
