// ABOUTME: Tests for installing, listing and removing package archives.
// ABOUTME: Archives are built in temporary directories; built-in plugins are linked in for class lookups.

package install

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/2389/qreader/internal/decoder"
	"github.com/2389/qreader/internal/qrcode"
	"github.com/2389/qreader/internal/store"
	"github.com/2389/qreader/internal/view"
	"github.com/2389/qreader/plugins/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/2389/qreader/plugins/base"
	_ "github.com/2389/qreader/plugins/text"
)

const wifiClasses = `<?xml version="1.0"?>
<classes>
  <decoder scheme="WIFI" class="wifi"/>
  <view kind="text" capability="card" class="wifi-card"/>
</classes>`

const wifiDecoder = `<decoder kind="text">
  <pattern><![CDATA[^S:(?P<ssid>[^;]*);]]></pattern>
  <field name="text">Network {{.ssid}}</field>
</decoder>`

const wifiView = `<view><template><![CDATA[<p class="card">{{.Text}}</p>]]></template></view>`

func metadata(name, version string) string {
	return "<package><name>" + name + "</name><brief>" + name + " codes</brief><version>" + version + "</version></package>"
}

func buildArchive(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func writeArchive(t *testing.T, filename string, files map[string]string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), filename)
	require.NoError(t, os.WriteFile(p, buildArchive(t, files), 0600))
	return p
}

func wifiPackage(t *testing.T, version string) string {
	return writeArchive(t, "wifi.qrp", map[string]string{
		"package.xml":           metadata("wifi", version),
		"classes.xml":           wifiClasses,
		"classes/wifi.xml":      wifiDecoder,
		"classes/wifi-card.xml": wifiView,
	})
}

func newManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(filepath.Join(t.TempDir(), "packages"), nil)
	require.NoError(t, err)
	return m
}

func TestInstallDeclarativePackage(t *testing.T) {
	ctx := context.Background()
	m := newManager(t)
	catalog := NewCatalog(core.Builtins(), m)
	decoders := decoder.NewLoadingManager(catalog)
	m.OnChange(func(Event) { decoders.Invalidate() })
	resolver := view.NewResolver(catalog)

	payload := []byte("WIFI:S:home;T:WPA;;")
	assert.Nil(t, decoders.Decode(payload), "scheme unknown before install")

	p, err := m.Install(ctx, wifiPackage(t, "1.0.0"))
	require.NoError(t, err)
	assert.Equal(t, "wifi", p.Name())
	assert.Equal(t, "1.0.0", p.Version)
	assert.Len(t, p.Digest, 64)
	assert.Equal(t, "healthy", p.Health().Status)
	assert.FileExists(t, filepath.Join(m.Dir(), "wifi.qrp"))

	res := decoders.Resolve(payload)
	require.NotNil(t, res.Code)
	assert.Equal(t, "wifi", res.Decoder)
	assert.Equal(t, qrcode.KindText, res.Code.Kind())
	assert.Equal(t, "Network home", res.Code.String())

	var buf bytes.Buffer
	require.NoError(t, resolver.Render(&buf, res.Code, "card"))
	assert.Equal(t, `<p class="card">Network home</p>`, buf.String())

	require.NoError(t, m.Remove(ctx, "wifi"))
	assert.Nil(t, decoders.Decode(payload), "scheme gone after removal")
	_, err = resolver.Resolve(res.Code, "card")
	assert.ErrorIs(t, err, view.ErrNoView)
}

func TestInstallCompiledClass(t *testing.T) {
	m := newManager(t)
	src := writeArchive(t, "notes.qrp", map[string]string{
		"package.xml": metadata("notes", "0.1.0"),
		"classes.xml": `<classes><decoder scheme="NOTE, MEMO" class="text"/></classes>`,
	})

	p, err := m.Install(context.Background(), src)
	require.NoError(t, err)
	require.Len(t, p.Decoders(), 1)

	mgr := decoder.NewManager(p.Decoders()...)
	assert.Equal(t, "remember milk", mgr.Decode([]byte("NOTE:remember milk")).String())
	assert.Equal(t, "call back", mgr.Decode([]byte("memo:call back")).String())
	assert.Nil(t, mgr.Decode([]byte("TEXT:not declared")))
}

func TestInstalledPackagesDispatchAfterBuiltins(t *testing.T) {
	m := newManager(t)
	src := writeArchive(t, "shadow.qrp", map[string]string{
		"package.xml": metadata("shadow", "1.0.0"),
		"classes.xml": `<classes><decoder scheme="TEXT" class="upper"/></classes>`,
		"classes/upper.xml": `<decoder kind="text"><pattern><![CDATA[(?s)^(?P<all>.*)$]]></pattern>` +
			`<field name="text">shadowed</field></decoder>`,
	})
	_, err := m.Install(context.Background(), src)
	require.NoError(t, err)

	catalog := NewCatalog(core.Builtins(), m)
	decoders := decoder.NewLoadingManager(catalog)
	assert.Equal(t, "hello", decoders.Decode([]byte("TEXT:hello")).String())

	plugins := catalog.Plugins()
	require.NotEmpty(t, plugins)
	assert.Equal(t, "shadow", plugins[len(plugins)-1].Name())
}

func TestInstallErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("wrong extension", func(t *testing.T) {
		src := writeArchive(t, "wifi.zip", map[string]string{"package.xml": metadata("wifi", "1.0.0")})
		_, err := newManager(t).Install(ctx, src)
		assert.ErrorIs(t, err, ErrCorrupted)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := newManager(t).Install(ctx, filepath.Join(t.TempDir(), "absent.qrp"))
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("not a zip", func(t *testing.T) {
		src := filepath.Join(t.TempDir(), "junk.qrp")
		require.NoError(t, os.WriteFile(src, []byte("definitely not a zip"), 0600))
		_, err := newManager(t).Install(ctx, src)
		assert.ErrorIs(t, err, ErrCorrupted)
	})

	t.Run("missing metadata", func(t *testing.T) {
		src := writeArchive(t, "bare.qrp", map[string]string{"classes.xml": wifiClasses})
		_, err := newManager(t).Install(ctx, src)
		assert.ErrorIs(t, err, ErrCorrupted)
	})

	t.Run("invalid version", func(t *testing.T) {
		src := writeArchive(t, "wifi.qrp", map[string]string{
			"package.xml":      metadata("wifi", "one"),
			"classes.xml":      wifiClasses,
			"classes/wifi.xml": wifiDecoder,
		})
		_, err := newManager(t).Install(ctx, src)
		assert.ErrorIs(t, err, ErrCorrupted)
	})

	t.Run("invalid name", func(t *testing.T) {
		src := writeArchive(t, "evil.qrp", map[string]string{
			"package.xml": metadata("../evil", "1.0.0"),
			"classes.xml": `<classes><decoder scheme="X" class="text"/></classes>`,
		})
		_, err := newManager(t).Install(ctx, src)
		assert.ErrorIs(t, err, ErrCorrupted)
	})

	t.Run("no usable classes", func(t *testing.T) {
		src := writeArchive(t, "empty.qrp", map[string]string{
			"package.xml": metadata("empty", "1.0.0"),
			"classes.xml": `<classes><decoder scheme="X" class="does.not.exist"/></classes>`,
		})
		_, err := newManager(t).Install(ctx, src)
		assert.ErrorIs(t, err, ErrCorrupted)
	})
}

func TestCorruptedInstallLeavesDecodersUnchanged(t *testing.T) {
	ctx := context.Background()
	m := newManager(t)
	catalog := NewCatalog(core.Builtins(), m)
	decoders := decoder.NewLoadingManager(catalog)
	m.OnChange(func(Event) { decoders.Invalidate() })

	_, err := m.Install(ctx, wifiPackage(t, "1.0.0"))
	require.NoError(t, err)
	before := len(decoders.Decoders())

	src := filepath.Join(t.TempDir(), "broken.qrp")
	require.NoError(t, os.WriteFile(src, []byte("PK\x03\x04 truncated"), 0600))
	_, err = m.Install(ctx, src)
	require.ErrorIs(t, err, ErrCorrupted)

	assert.Len(t, decoders.Decoders(), before)
	assert.Equal(t, "Network x", decoders.Decode([]byte("WIFI:S:x;;")).String())
}

func TestInstallOutdated(t *testing.T) {
	ctx := context.Background()
	m := newManager(t)

	_, err := m.Install(ctx, wifiPackage(t, "2.0.0"))
	require.NoError(t, err)

	_, err = m.Install(ctx, wifiPackage(t, "1.5.0"))
	assert.ErrorIs(t, err, ErrOutdated)

	_, err = m.Install(ctx, wifiPackage(t, "2.0.0"))
	assert.NoError(t, err, "reinstalling the same version is allowed")

	_, err = m.Install(ctx, wifiPackage(t, "2.1.0"))
	require.NoError(t, err)

	p, err := m.Get("wifi")
	require.NoError(t, err)
	assert.Equal(t, "2.1.0", p.Version)
}

func TestInstallReader(t *testing.T) {
	m := newManager(t)
	data := buildArchive(t, map[string]string{
		"package.xml": metadata("memo", "1.0.0"),
		"classes.xml": `<classes><decoder scheme="MEMO" class="text"/></classes>`,
	})

	p, err := m.InstallReader(context.Background(), "memo.qrp", bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), p.Size)

	_, err = m.InstallReader(context.Background(), "memo.txt", bytes.NewReader(data))
	assert.ErrorIs(t, err, ErrCorrupted)
}

func TestInstallDegradedPackage(t *testing.T) {
	m := newManager(t)
	src := writeArchive(t, "half.qrp", map[string]string{
		"package.xml": metadata("half", "1.0.0"),
		"classes.xml": `<classes>
  <decoder scheme="HALF" class="text"/>
  <decoder scheme="GONE" class="missing"/>
  <view kind="nonsense" capability="card" class="html"/>
</classes>`,
	})

	p, err := m.Install(context.Background(), src)
	require.NoError(t, err)
	assert.Len(t, p.Decoders(), 1)
	assert.Empty(t, p.Views())
	assert.Equal(t, "degraded", p.Health().Status)
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	m := newManager(t)

	assert.ErrorIs(t, m.Remove(ctx, "nothing"), ErrNotFound)
	assert.ErrorIs(t, m.Remove(ctx, "../etc"), ErrNotFound)

	_, err := m.Install(ctx, wifiPackage(t, "1.0.0"))
	require.NoError(t, err)
	require.NoError(t, m.Remove(ctx, "wifi"))

	_, err = m.Get("wifi")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListOrdersByInstallTime(t *testing.T) {
	ctx := context.Background()
	m := newManager(t)

	for _, name := range []string{"alpha", "beta", "gamma"} {
		src := writeArchive(t, name+".qrp", map[string]string{
			"package.xml": metadata(name, "1.0.0"),
			"classes.xml": `<classes><decoder scheme="` + strings.ToUpper(name) + `" class="text"/></classes>`,
		})
		_, err := m.Install(ctx, src)
		require.NoError(t, err)
	}

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(filepath.Join(m.Dir(), "gamma.qrp"), base, base))
	require.NoError(t, os.Chtimes(filepath.Join(m.Dir(), "alpha.qrp"), base.Add(time.Hour), base.Add(time.Hour)))
	require.NoError(t, os.Chtimes(filepath.Join(m.Dir(), "beta.qrp"), base.Add(2*time.Hour), base.Add(2*time.Hour)))

	// unreadable archives are skipped
	require.NoError(t, os.WriteFile(filepath.Join(m.Dir(), "broken.qrp"), []byte("nope"), 0600))

	packages, err := m.List()
	require.NoError(t, err)

	var names []string
	for _, p := range packages {
		names = append(names, p.Name())
	}
	assert.Equal(t, []string{"gamma", "alpha", "beta"}, names)
}

func TestSyncMirrorsDirectory(t *testing.T) {
	ctx := context.Background()
	db, err := store.New(":memory:")
	require.NoError(t, err)
	defer db.Close()

	m, err := NewManager(filepath.Join(t.TempDir(), "packages"), db)
	require.NoError(t, err)

	var events []Event
	m.OnChange(func(e Event) { events = append(events, e) })

	_, err = m.Install(ctx, wifiPackage(t, "1.0.0"))
	require.NoError(t, err)

	rec, err := db.GetPackage(ctx, "wifi")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "1.0.0", rec.Version)
	assert.Equal(t, 1, rec.DecoderCount)
	assert.Equal(t, 1, rec.ViewCount)

	// a row with no archive behind it is stale
	require.NoError(t, db.UpsertPackage(ctx, &store.PackageRecord{Name: "ghost", Version: "0.0.1", InstalledAt: time.Now()}))
	require.NoError(t, m.Sync(ctx))

	records, err := db.ListPackages(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "wifi", records[0].Name)

	require.NoError(t, m.Remove(ctx, "wifi"))
	rec, err = db.GetPackage(ctx, "wifi")
	require.NoError(t, err)
	assert.Nil(t, rec)

	require.Len(t, events, 3)
	assert.Equal(t, EventInstalled, events[0].Type)
	assert.Equal(t, EventSynced, events[1].Type)
	assert.Equal(t, Event{Type: EventRemoved, Package: "wifi"}, events[2])
}

func TestIOErrorUnwraps(t *testing.T) {
	err := error(&IOError{Op: "write", Path: "/x", Err: os.ErrPermission})
	assert.True(t, errors.Is(err, os.ErrPermission))
	assert.Contains(t, err.Error(), "/x")
}
