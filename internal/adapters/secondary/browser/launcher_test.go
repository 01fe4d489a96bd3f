package browser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeLauncher(preferred string, installed ...string) *Launcher {
	l := NewLauncher(preferred, nil)
	l.browsers = platformBrowsers("linux")
	l.lookPath = func(cmd string) (string, error) {
		for _, c := range installed {
			if c == cmd {
				return "/usr/bin/" + cmd, nil
			}
		}
		return "", errors.New("not found")
	}
	return l
}

func TestLauncherLaunch(t *testing.T) {
	t.Run("with noOpen flag", func(t *testing.T) {
		launcher := fakeLauncher("")
		assert.NoError(t, launcher.Launch("http://localhost:3000", true))
	})

	t.Run("without browsers", func(t *testing.T) {
		launcher := &Launcher{lookPath: func(string) (string, error) { return "", nil }}
		err := launcher.Launch("http://localhost:3000", false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "browser selection")
	})

	t.Run("starts the command", func(t *testing.T) {
		launcher := NewLauncher("", nil)
		launcher.browsers = []Browser{{Name: "True", Command: "true", Args: urlOnly}}
		if _, err := launcher.lookPath("true"); err != nil {
			t.Skip("true is not installed")
		}
		assert.NoError(t, launcher.Launch("http://localhost:3000", false))
	})
}

func TestLauncherDetect(t *testing.T) {
	tests := []struct {
		name      string
		preferred string
		installed []string
		want      string
		wantErr   string
	}{
		{name: "system handler first", installed: []string{"xdg-open", "firefox"}, want: "Default"},
		{name: "preferred browser", preferred: "firefox", installed: []string{"xdg-open", "firefox"}, want: "Firefox"},
		{name: "preferred is case insensitive", preferred: "CHROMIUM", installed: []string{"chromium"}, want: "Chromium"},
		{name: "preferred missing falls back", preferred: "firefox", installed: []string{"google-chrome"}, want: "Chrome"},
		{name: "default keyword", preferred: "default", installed: []string{"firefox"}, want: "Firefox"},
		{name: "nothing installed", wantErr: "no supported browsers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, err := fakeLauncher(tt.preferred, tt.installed...).Detect()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, name)
		})
	}

	t.Run("no browsers for platform", func(t *testing.T) {
		_, err := (&Launcher{}).Detect()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no browsers detected")
	})
}

func TestPlatformBrowsers(t *testing.T) {
	for _, goos := range []string{"darwin", "linux", "windows"} {
		t.Run(goos, func(t *testing.T) {
			browsers := platformBrowsers(goos)
			require.NotEmpty(t, browsers)
			assert.Equal(t, "Default", browsers[0].Name)
			args := browsers[0].Args("http://localhost:3000")
			assert.Equal(t, "http://localhost:3000", args[len(args)-1])
		})
	}

	assert.Empty(t, platformBrowsers("plan9"))
	assert.Equal(t, []string{"-a", "Safari", "http://x"}, platformBrowsers("darwin")[2].Args("http://x"))
	assert.Equal(t, []string{"/c", "start", "msedge", "http://x"}, platformBrowsers("windows")[2].Args("http://x"))
}
