package system

import (
	"fmt"

	"github.com/julianstephens/dailyfocus/internal/cli"
	"github.com/julianstephens/dailyfocus/internal/migration"
)

// schemaStore is implemented by the SQL backends.
type schemaStore interface {
	Migrate(progress func(string)) (int, error)
	SchemaStatus() (migration.Status, error)
}

func schemaOf(ctx *cli.Context) (schemaStore, error) {
	s, ok := ctx.Backend().(schemaStore)
	if !ok {
		return nil, fmt.Errorf("backend %s has no schema migrations", ctx.Store.GetConfigPath())
	}
	return s, nil
}

type MigrateCmd struct {
	Status bool `help:"Only report the schema version and pending migrations."`
}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	s, err := schemaOf(ctx)
	if err != nil {
		return err
	}

	if c.Status {
		st, err := s.SchemaStatus()
		if err != nil {
			return err
		}
		fmt.Printf("Schema version: %d (latest %d)\n", st.Current, st.Latest)
		for _, m := range st.Pending {
			fmt.Printf("  pending %03d_%s\n", m.Version, m.Name)
		}
		return nil
	}

	count, err := s.Migrate(func(msg string) {
		fmt.Println(msg)
	})
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if count == 0 {
		fmt.Println("No migrations to apply. Database is up to date.")
	} else {
		fmt.Printf("\nSuccessfully applied %d migration(s).\n", count)
	}
	return nil
}
