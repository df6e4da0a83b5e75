//go:build integration_ch
// +build integration_ch

package repo

import (
	"context"
	"testing"
	"time"

	chx "brickdump/internal/platform/store/ch"
	"brickdump/internal/platform/testkit/containers"
	"brickdump/internal/services/dbload/domain"
)

func TestCH_LoadTable_Integration(t *testing.T) {
	dsn := containers.StartClickHouse(t)

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	c, err := chx.Open(ctx, chx.Config{URL: dsn, Role: "load-integration"})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = c.Close() })
	if err := c.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}

	spec := domain.TableSpec{
		Schema:  "lego",
		Name:    "inventory_parts",
		Columns: []string{"inventory_id", "part_num", "color_id", "quantity", "is_spare", "img_url"},
		Replace: true,
	}
	n, err := NewCH(c, 3).LoadTable(ctx, spec, &sliceRows{recs: inventoryRecs(10)})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if n != 10 {
		t.Fatalf("inserted %d", n)
	}

	var count uint64
	if err := c.Conn.QueryRow(ctx, "SELECT count() FROM `lego`.`inventory_parts`").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 10 {
		t.Fatalf("count = %d", count)
	}
}
