package validation

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		errMsg   string
		wantErr  bool
	}{
		{name: "valid lowercase", username: "alice"},
		{name: "valid mixed case", username: "AliceSmith"},
		{name: "valid with underscore", username: "alice_smith"},
		{name: "valid with numbers", username: "alice123"},
		{name: "valid max length", username: strings.Repeat("a", 32)},
		{name: "empty", username: "", wantErr: true, errMsg: "cannot be empty"},
		{name: "too short", username: "ab", wantErr: true, errMsg: "at least 3 characters"},
		{name: "too long", username: strings.Repeat("a", 33), wantErr: true, errMsg: "must not exceed 32"},
		{name: "spaces", username: "alice smith", wantErr: true, errMsg: "can only contain"},
		{name: "unicode", username: "алиса", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			if tt.errMsg != "" {
				assert.Contains(t, err.Error(), tt.errMsg)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("a long enough password"))
	assert.Error(t, ValidatePassword(""))
	assert.Error(t, ValidatePassword("short"))
}

func TestValidateDocumentID(t *testing.T) {
	assert.NoError(t, ValidateDocumentID(uuid.New().String()))
	assert.Error(t, ValidateDocumentID(""))
	assert.Error(t, ValidateDocumentID("not-a-uuid"))
}

func TestValidateDocumentType(t *testing.T) {
	for _, docType := range []string{"note", "snippet", "todo", "workspace"} {
		assert.NoError(t, ValidateDocumentType(docType))
	}
	assert.Error(t, ValidateDocumentType("spreadsheet"))
	assert.Error(t, ValidateDocumentType(""))
}

func TestValidateTitle(t *testing.T) {
	assert.NoError(t, ValidateTitle(""))
	assert.NoError(t, ValidateTitle("Draft"))
	assert.Error(t, ValidateTitle(strings.Repeat("x", 257)))
}
