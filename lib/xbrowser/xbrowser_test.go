package xbrowser_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"oss.terrastruct.com/xos"

	"oss.terrastruct.com/navani/lib/xbrowser"
)

func TestCommand(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", xbrowser.Command(xos.NewEnv(nil)))
	assert.Equal(t, "firefox", xbrowser.Command(xos.NewEnv([]string{"BROWSER=firefox"})))
	assert.Equal(t, "lynx", xbrowser.Command(xos.NewEnv([]string{"BROWSER=firefox", "NAVANI_BROWSER=lynx"})))
}

func TestOpenURLDisabled(t *testing.T) {
	t.Parallel()

	err := xbrowser.OpenURL(context.Background(), xos.NewEnv([]string{"NAVANI_BROWSER=0"}), "http://localhost")
	assert.ErrorIs(t, err, xbrowser.ErrDisabled)
}

func TestOpenURLCommand(t *testing.T) {
	t.Parallel()

	err := xbrowser.OpenURL(context.Background(), xos.NewEnv([]string{"NAVANI_BROWSER=true"}), "http://localhost")
	assert.NoError(t, err)
	err = xbrowser.OpenURL(context.Background(), xos.NewEnv([]string{"NAVANI_BROWSER=false"}), "http://localhost")
	assert.Error(t, err)
}
