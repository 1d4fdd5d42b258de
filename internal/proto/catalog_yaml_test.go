package proto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleCatalog = `
interfaces:
  - name: wl_output
    version: 2
    requests:
      - name: release
        args: []
    events:
      - name: geometry
        args: [int32, int32, string]
      - name: done
        args: []
`

func TestLoadYAMLAddsInterface(t *testing.T) {
	c := NewCatalog()
	require.NoError(t, c.LoadYAML([]byte(sampleCatalog)))

	d := c.Lookup("wl_output")
	require.NotNil(t, d)
	require.Equal(t, uint32(2), d.Version)

	sig, ok := d.Event(0)
	require.True(t, ok)
	require.Equal(t, "geometry", sig.Name)
	require.Len(t, sig.ArgumentTypes, 3)
}

func TestLoadYAMLRejectsCollisionWithBuiltin(t *testing.T) {
	c := NewCatalog()
	err := c.LoadYAML([]byte(`
interfaces:
  - name: wl_surface
    version: 1
`))
	require.Error(t, err)
}

func TestLoadYAMLRejectsUnknownArgType(t *testing.T) {
	c := NewCatalog()
	err := c.LoadYAML([]byte(`
interfaces:
  - name: wl_foo
    version: 1
    requests:
      - name: bad
        args: [bogus]
`))
	require.Error(t, err)
}

func TestCatalogLookupMissing(t *testing.T) {
	c := NewCatalog()
	require.Nil(t, c.Lookup("does_not_exist"))
}
