package models

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentBlock_Validation(t *testing.T) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	tests := []struct {
		name    string
		block   ContentBlock
		wantErr bool
	}{
		{
			name:  "valid heading",
			block: ContentBlock{ID: "b1", Kind: BlockKindHeading, Level: 2, Content: "Intro"},
		},
		{
			name:    "missing id",
			block:   ContentBlock{Kind: BlockKindParagraph},
			wantErr: true,
		},
		{
			name:    "unknown kind",
			block:   ContentBlock{ID: "b1", Kind: "table"},
			wantErr: true,
		},
		{
			name:    "heading level out of range",
			block:   ContentBlock{ID: "b1", Kind: BlockKindHeading, Level: 4},
			wantErr: true,
		},
		{
			name: "citation without url",
			block: ContentBlock{
				ID:       "b1",
				Kind:     BlockKindParagraph,
				Metadata: BlockMetadata{Citations: []Citation{{Title: "Source"}}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.Struct(tt.block)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestCredentials_Host(t *testing.T) {
	creds := &Credentials{BaseURL: "https://WWW.Acme.example:8443/blog"}

	assert.Equal(t, "acme.example", creds.Host())
	assert.Empty(t, (*Credentials)(nil).Host())
}

func TestCredentials_CacheScope(t *testing.T) {
	assert.Equal(t, "default", (&Credentials{}).CacheScope())
	assert.Equal(t, "tenant:acme", (&Credentials{TenantID: "acme"}).CacheScope())
}

func TestTenantCMSConfig_Credentials(t *testing.T) {
	config := &TenantCMSConfig{
		TenantID:    "acme",
		BaseURL:     "https://acme.example",
		Username:    "editor",
		AppPassword: "secret",
	}

	creds := config.Credentials()

	assert.Equal(t, CredentialSourceTenant, creds.Source)
	assert.Equal(t, "secret", creds.AppPassword)
	assert.Equal(t, "acme", creds.TenantID)
}

func TestDeliveryOrder_Plan(t *testing.T) {
	direct := DeliveryMethodDirect
	relay := DeliveryMethodRelay

	tests := []struct {
		name         string
		order        DeliveryOrder
		relayEnabled bool
		fallback     bool
		want         []DeliveryMethod
	}{
		{"default order", "", true, true, []DeliveryMethod{direct, relay}},
		{"direct first", DeliveryOrderDirectFirst, true, true, []DeliveryMethod{direct, relay}},
		{"relay first", DeliveryOrderRelayFirst, true, true, []DeliveryMethod{relay, direct}},
		{"relay first without fallback", DeliveryOrderRelayFirst, true, false, []DeliveryMethod{relay}},
		{"relay only", DeliveryOrderRelayOnly, true, true, []DeliveryMethod{relay}},
		{"direct only", DeliveryOrderDirectOnly, true, true, []DeliveryMethod{direct}},
		{"relay disabled", DeliveryOrderRelayFirst, false, true, []DeliveryMethod{direct}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.order.Plan(tt.relayEnabled, tt.fallback))
		})
	}
}
