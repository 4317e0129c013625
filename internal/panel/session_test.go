package panel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoginSucceeded(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want bool
	}{
		{"still on login page", "https://sistemamd.com.br/login", false},
		{"back on login with error flag", "https://sistemamd.com.br/login?login_error", false},
		{"landed on dashboard", "https://sistemamd.com.br/dashboard", true},
		{"landed on home", "https://sistemamd.com.br/", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, loginSucceeded(tt.url))
		})
	}
}

// The holder checkboxes follow the form's visual layout, not the numeric
// order of their ids. The registration is silently wrong if this drifts.
func TestHolderCheckboxOrder(t *testing.T) {
	assert.Equal(t, []string{
		"input#titular_2",
		"input#titular_1",
		"input#titular_4",
		"input#titular_5",
		"input#titular_3",
	}, holderCheckboxes)
}
