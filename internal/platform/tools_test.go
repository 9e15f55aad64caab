package platform

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseToolVersion(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   string
	}{
		{"distro build", "ffmpeg version 6.1.1-3ubuntu5 Copyright (c) 2000-2023 the FFmpeg developers\nbuilt with gcc 13", "6.1.1"},
		{"release essentials", "ffmpeg version 7.0-essentials_build-www.gyan.dev Copyright (c) 2000-2024", "7.0"},
		{"n-prefixed", "ffmpeg version n5.1.2 Copyright", "5.1.2"},
		{"git snapshot", "ffmpeg version 2024-03-07-git-97beb63a66-full_build-www.gyan.dev", ""},
		{"N-prefixed snapshot", "ffmpeg version N-113711-g1fe5ce2b93 Copyright", ""},
		{"garbage", "command not found", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseToolVersion(tt.output))
		})
	}
}

func TestVersionSupported(t *testing.T) {
	ok, err := VersionSupported("6.1.1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VersionSupported("3.4")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = VersionSupported("")
	require.NoError(t, err)
	assert.True(t, ok, "unknown versions are assumed supported")

	_, err = VersionSupported("not.a.version")
	assert.Error(t, err)
}

func TestDetectFFmpeg_Order(t *testing.T) {
	if runtime.GOOS == OSWindows {
		t.Skip("executable bits are not meaningful on windows")
	}

	localDir := t.TempDir()
	localBin := filepath.Join(localDir, "ffmpeg")
	require.NoError(t, os.WriteFile(localBin, []byte("#!/bin/sh\n"), 0755))

	configuredDir := t.TempDir()
	configuredBin := filepath.Join(configuredDir, "ffmpeg")
	require.NoError(t, os.WriteFile(configuredBin, []byte("#!/bin/sh\n"), 0755))

	orig := lookPath
	t.Cleanup(func() { lookPath = orig })

	lookPath = func(string) (string, error) { return "/usr/bin/ffmpeg", nil }

	info := DetectFFmpeg(configuredDir, localDir)
	assert.Equal(t, ToolSourceConfigured, info.Source)
	assert.Equal(t, configuredBin, info.Path)

	info = DetectFFmpeg("", localDir)
	assert.Equal(t, ToolSourcePath, info.Source)
	assert.Equal(t, "/usr/bin/ffmpeg", info.Path)

	lookPath = func(string) (string, error) { return "", os.ErrNotExist }

	info = DetectFFmpeg("/does/not/exist", localDir)
	assert.Equal(t, ToolSourceLocal, info.Source)
	assert.Equal(t, localBin, info.Path)

	info = DetectFFmpeg("", t.TempDir())
	assert.False(t, info.Found())
	assert.Equal(t, ToolSourceNone, info.Source)
}

func TestDetectFFmpeg_IgnoresNonExecutable(t *testing.T) {
	if runtime.GOOS == OSWindows {
		t.Skip("executable bits are not meaningful on windows")
	}

	orig := lookPath
	t.Cleanup(func() { lookPath = orig })
	lookPath = func(string) (string, error) { return "", os.ErrNotExist }

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ffmpeg"), nil, 0644))

	assert.False(t, DetectFFmpeg("", dir).Found())
}

func TestAppDataDir(t *testing.T) {
	dir, err := AppDataDir()
	require.NoError(t, err)
	assert.Equal(t, AppName, filepath.Base(dir))

	assert.Equal(t, filepath.Join("base", "ffmpeg", "bin"), LocalToolDir("base"))
}

func TestFFmpegInstallHelp(t *testing.T) {
	assert.Contains(t, FFmpegInstallHelp(OSWindows), "FFmpeg Utility")
	assert.Contains(t, FFmpegInstallHelp(OSDarwin), "brew install ffmpeg")
	assert.Contains(t, FFmpegInstallHelp(OSLinux), "apt install ffmpeg")
	assert.NotEmpty(t, FFmpegInstallHelp("plan9"))
}
