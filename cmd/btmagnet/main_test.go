package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/burmudar/bt-magnet/pkg/bt/encoding"
	"github.com/burmudar/bt-magnet/pkg/bt/infohash"
)

const sampleHash = "fad82e5c0bd9a0f485c9f8399aef22bca0787967"

var sampleTorrent = "d8:announce8:http://a13:announce-listll8:http://ael8:http://b7:udp://cee" +
	"4:infod6:lengthi3e4:name7:My File12:piece lengthi16e6:pieces20:xxxxxxxxxxxxxxxxxxxxee"

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append(args, "--log-level", "error"))

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeTorrent(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDecodeCommand(t *testing.T) {
	out, err := run(t, "decode", "d3:cow3:moo4:spaml1:a1:bee")
	require.NoError(t, err)
	assert.JSONEq(t, `{"cow":"moo","spam":["a","b"]}`, out)

	_, err = run(t, "decode", "4:sp")
	assert.ErrorIs(t, err, encoding.ErrTruncatedString)
}

func TestMagnetCommand(t *testing.T) {
	path := writeTorrent(t, "sample.torrent", sampleTorrent)

	out, err := run(t, "magnet", "--verify", path)
	require.NoError(t, err)
	assert.Equal(t,
		"magnet:?xt=urn:btih:"+sampleHash+"&dn=My%20File&tr=http%3A%2F%2Fa&tr=http%3A%2F%2Fb&tr=udp%3A%2F%2Fc\n",
		out)
}

func TestMagnetCommandJSON(t *testing.T) {
	path := writeTorrent(t, "sample.torrent", sampleTorrent)

	out, err := run(t, "magnet", "-o", "json", path)
	require.NoError(t, err)

	var got linkOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, path, got.Source)
	assert.Equal(t, sampleHash, got.InfoHash)
	assert.Equal(t, "My File", got.Name)
	assert.Equal(t, []string{"http://a", "http://b", "udp://c"}, got.Trackers)
}

func TestMagnetCommandPartialFailure(t *testing.T) {
	good := writeTorrent(t, "good.torrent", sampleTorrent)
	bad := writeTorrent(t, "bad.torrent", "d8:announce8:http://xe")

	out, err := run(t, "magnet", bad, good)
	assert.ErrorIs(t, err, infohash.ErrMissingInfoDictionary)
	assert.Equal(t, 1, strings.Count(out, "magnet:?"))
}

func TestHashCommand(t *testing.T) {
	path := writeTorrent(t, "sample.torrent", sampleTorrent)

	out, err := run(t, "hash", path)
	require.NoError(t, err)
	assert.Equal(t, sampleHash+"\n", out)
}

func TestInfoCommand(t *testing.T) {
	path := writeTorrent(t, "sample.torrent", sampleTorrent)

	out, err := run(t, "info", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Name: My File\n")
	assert.Contains(t, out, "Tracker URL: http://a\n")
	assert.Contains(t, out, "Info Hash: "+sampleHash+"\n")
	assert.Contains(t, out, "Pieces: 1\n")
}

func TestMaxDepthFlag(t *testing.T) {
	path := writeTorrent(t, "sample.torrent", sampleTorrent)

	_, err := run(t, "hash", "--max-depth", "2", path)
	assert.ErrorIs(t, err, encoding.ErrNestingTooDeep)
}

func TestInfoCommandPieceMismatch(t *testing.T) {
	// 40 bytes in 16 byte pieces needs 3 hashes, the file only has 1
	path := writeTorrent(t, "short.torrent",
		"d4:infod6:lengthi40e4:name1:a12:piece lengthi16e6:pieces20:xxxxxxxxxxxxxxxxxxxxee")

	hook := logtest.NewGlobal()
	defer hook.Reset()

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"info", path, "--log-level", "warn"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	assert.Contains(t, out.String(), "Pieces: 1\n")

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, 3, entry.Data["expected"])
	assert.Equal(t, 1, entry.Data["found"])
}
