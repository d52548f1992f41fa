package history_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/sms-ledger/cmd/history"
	"fjacquet/sms-ledger/cmd/internal/cmdtest"
)

func TestHistoryCommand(t *testing.T) {
	db := cmdtest.TempDB(t)
	cmdtest.Store(t, db, "2",
		"HDFC Bank: Rs. 1,500.00 debited from A/c XX1234 on 15-12-2023 at AMAZON INDIA.",
		"Rs 50")

	out, err := cmdtest.Run(t, history.NewCommand(), "history", "--db", db, "--user", "2")
	require.NoError(t, err)

	var rows []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 2)
	// newest first; the low confidence message has no transaction
	assert.Equal(t, "Rs 50", rows[0]["message_preview"])
	assert.Equal(t, false, rows[0]["processed"])
	assert.Nil(t, rows[0]["parsed_amount"])
	assert.Equal(t, true, rows[1]["processed"])
	assert.Equal(t, "Amazon India", rows[1]["parsed_merchant"])

	out, err = cmdtest.Run(t, history.NewCommand(), "history", "--db", db, "--user", "2", "--format", "csv")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "ID,ReceivedAt,Sender"))
}

func TestHistoryCommand_Empty(t *testing.T) {
	db := cmdtest.TempDB(t)
	out, err := cmdtest.Run(t, history.NewCommand(), "history", "--db", db, "--user", "99")
	require.NoError(t, err)
	assert.Equal(t, "[]\n", out)
}
