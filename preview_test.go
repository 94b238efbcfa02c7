package editshell

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveDrivesAllSwitchesFromOneFlag(t *testing.T) {
	tests := []struct {
		name  string
		props PageProps
		want  bool
	}{
		{"preview on", PageProps{Preview: true}, true},
		{"preview off", PageProps{Preview: false}, false},
		{"absent", PageProps{}, false},
		{"error does not change the flag", PageProps{Preview: true, Error: "boom"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.props)
			assert.Equal(t, EditState{CMSEnabled: tt.want, Sidebar: tt.want, Toolbar: tt.want}, got)
		})
	}
}

func TestPropsFromSessionTreatsMissingAsFalse(t *testing.T) {
	assert.False(t, propsFromSession(nil).Preview)
	assert.False(t, propsFromSession(map[interface{}]interface{}{}).Preview)
	assert.False(t, propsFromSession(map[interface{}]interface{}{sessionPreviewKey: "yes"}).Preview)
	assert.True(t, propsFromSession(map[interface{}]interface{}{sessionPreviewKey: true}).Preview)
}

func TestCMSConfiguredFromEditState(t *testing.T) {
	on := NewCMS(CMSConfig{}, Resolve(PageProps{Preview: true}))
	assert.True(t, on.Enabled())
	assert.True(t, on.ShowSidebar())
	assert.True(t, on.ShowToolbar())

	off := NewCMS(CMSConfig{}, Resolve(PageProps{}))
	assert.False(t, off.Enabled())
	assert.False(t, off.ShowSidebar())
	assert.False(t, off.ShowToolbar())
}

func TestToggleLabelFollowsEnabledFlag(t *testing.T) {
	cms := NewCMS(CMSConfig{}, EditState{})
	assert.Equal(t, "Edit This Site", ToggleLabel(cms.Enabled()))

	cms.Toggle()
	assert.Equal(t, "Exit Edit Mode", ToggleLabel(cms.Enabled()))

	cms.Toggle()
	assert.Equal(t, "Edit This Site", ToggleLabel(cms.Enabled()))
}

func TestToggleWithoutPreviewKeepsPanelsHidden(t *testing.T) {
	cms := NewCMS(CMSConfig{}, Resolve(PageProps{}))
	cms.Toggle()
	assert.True(t, cms.Enabled())
	assert.False(t, cms.ShowSidebar())
	assert.False(t, cms.ShowToolbar())
}

func TestCMSContextRoundTrip(t *testing.T) {
	_, ok := CMSFromContext(context.Background())
	assert.False(t, ok)

	cms := NewCMS(CMSConfig{GitHub: GitHubAPI{ClientID: "id"}}, EditState{})
	got, ok := CMSFromContext(WithCMS(context.Background(), cms))
	assert.True(t, ok)
	assert.Same(t, cms, got)
	assert.Equal(t, "id", got.GitHub().ClientID)
}
