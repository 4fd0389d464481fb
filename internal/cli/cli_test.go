package cli_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carbon-chat-go/internal/cli"
	"carbon-chat-go/internal/footprint"
	"carbon-chat-go/internal/interpreter"
	"carbon-chat-go/internal/service"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd := cli.NewRootCmd("test")
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestAsk(t *testing.T) {
	out, err := run(t, "", "ask", "car", "50km", "and", "bike", "20km")
	require.NoError(t, err)
	assert.Contains(t, out, "50km car trip produces approximately 10.00kg of CO2.")
	assert.Contains(t, out, "20km bike journey produces 0kg of CO2")
	assert.Less(t, strings.Index(out, "car trip"), strings.Index(out, "bike journey"))
}

func TestAskFallbackPrintsSuggestions(t *testing.T) {
	out, err := run(t, "", "ask", "asdkjf")
	require.NoError(t, err)
	assert.Contains(t, out, interpreter.FallbackMessage)
	for _, s := range interpreter.Suggestions() {
		assert.Contains(t, out, s)
	}
}

func TestAskJSON(t *testing.T) {
	out, err := run(t, "", "ask", "--json", "electricity 100kwh")
	require.NoError(t, err)
	var reply interpreter.Reply
	require.NoError(t, json.Unmarshal([]byte(out), &reply))
	assert.Equal(t, interpreter.IntentElectricity, reply.Intent)
	require.Len(t, reply.Estimates, 1)
	assert.Equal(t, 50.0, reply.Estimates[0].KgCO2)
}

func TestAskRequiresArgs(t *testing.T) {
	_, err := run(t, "", "ask")
	assert.Error(t, err)
}

func TestEstimate(t *testing.T) {
	out, err := run(t, "", "estimate", "flight", "1000")
	require.NoError(t, err)
	assert.Contains(t, out, "1000km flight: 200.00kg CO2")
	assert.Contains(t, out, footprint.Flight.Tip())
	assert.Contains(t, out, "Equivalent to driving")
}

func TestEstimateErrors(t *testing.T) {
	_, err := run(t, "", "estimate", "rocket", "1")
	assert.ErrorIs(t, err, service.ErrUnknownActivity)

	_, err = run(t, "", "estimate", "car", "far")
	assert.Error(t, err)

	_, err = run(t, "", "estimate", "car", "-3")
	assert.ErrorIs(t, err, service.ErrInvalidQuantity)
}

func TestRepl(t *testing.T) {
	out, err := run(t, "hello\nmeat 2kg\n\n/history\n/quit\nflight 1000km\n", "repl")
	require.NoError(t, err)
	assert.Contains(t, out, "bot> Hello! I'm your Carbon Offset Calculator.")
	assert.Contains(t, out, "bot> "+interpreter.GreetingReply)
	assert.Contains(t, out, "2kg of meat produces about 12.00kg of CO2.")
	assert.Contains(t, out, "user: meat 2kg")
	assert.NotContains(t, out, "1000km flight")
}

func TestReplEndsOnEOF(t *testing.T) {
	out, err := run(t, "car 50km", "repl")
	require.NoError(t, err)
	assert.Contains(t, out, "50km car trip produces approximately 10.00kg of CO2.")
}
