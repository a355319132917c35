package store

import (
	"testing"
	"testing/fstest"

	qt "github.com/frankban/quicktest"
)

func TestLoadMigrationsEmbedded(t *testing.T) {
	c := qt.New(t)

	migrations, err := LoadMigrations(Migrations())
	c.Assert(err, qt.IsNil)
	c.Assert(len(migrations) >= 2, qt.IsTrue)
	c.Assert(migrations[0].Version, qt.Equals, 1)
	c.Assert(migrations[0].Description, qt.Equals, "init")
	c.Assert(migrations[0].Down, qt.Not(qt.Equals), "")
	for i := 1; i < len(migrations); i++ {
		c.Assert(migrations[i].Version > migrations[i-1].Version, qt.IsTrue)
	}
}

func TestLoadMigrationsOrdersAndSkipsUnknownFiles(t *testing.T) {
	c := qt.New(t)
	fsys := fstest.MapFS{
		"0000000010_add_index.up.sql":    {Data: []byte("CREATE INDEX x ON t (a);")},
		"0000000002_create_t.up.sql":     {Data: []byte("CREATE TABLE t (a INT);")},
		"0000000002_create_t.down.sql":   {Data: []byte("DROP TABLE t;")},
		"README.md":                      {Data: []byte("docs")},
		"notanumber_create_t.up.sql":     {Data: []byte("SELECT 1;")},
		"0000000003_sideways.sql":        {Data: []byte("SELECT 1;")},
	}

	migrations, err := LoadMigrations(fsys)
	c.Assert(err, qt.IsNil)
	c.Assert(migrations, qt.HasLen, 2)
	c.Assert(migrations[0].Version, qt.Equals, 2)
	c.Assert(migrations[0].Description, qt.Equals, "create t")
	c.Assert(migrations[0].Down, qt.Equals, "DROP TABLE t;")
	c.Assert(migrations[1].Version, qt.Equals, 10)
	c.Assert(migrations[1].Down, qt.Equals, "")
}

func TestLoadMigrationsRequiresUp(t *testing.T) {
	c := qt.New(t)
	fsys := fstest.MapFS{
		"0000000001_only_down.down.sql": {Data: []byte("DROP TABLE t;")},
	}

	_, err := LoadMigrations(fsys)
	c.Assert(err, qt.ErrorMatches, "migration 1 has no up file")
}
