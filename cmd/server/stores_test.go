package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRedactDSN(t *testing.T) {
	require.Equal(t, "ops:***@tcp(db:3306)/opsboard", redactDSN("ops:hunter2@tcp(db:3306)/opsboard"))
	require.Equal(t, "ops@tcp(db:3306)/opsboard", redactDSN("ops@tcp(db:3306)/opsboard"))
	require.Equal(t, "/data/ops.db", redactDSN("/data/ops.db"))
}
