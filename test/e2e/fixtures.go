package e2e

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Fixtures provides test data and helper functions for E2E tests.

// MonNames provides sample Mon names for test rosters.
var MonNames = []string{
	"Aldric",
	"Brianna",
	"Cedric",
	"Diana",
	"Eldrin",
}

// MoveIDs provides sample catalog move ids for test rosters. These must
// exist in the data directory the test server is pointed at.
var MoveIDs = []string{
	"tackle",
	"growl",
	"ember",
	"watergun",
}

// RandomMonName returns a random Mon name.
func RandomMonName() string {
	return MonNames[rand.Intn(len(MonNames))]
}

// NewTeamMon builds a minimal, valid TeamMon fixture.
func NewTeamMon(name string) TeamMon {
	return TeamMon{
		Name:    name,
		Types:   []string{"normal"},
		Level:   50,
		Stats:   [5]int{80, 70, 60, 60, 90},
		HP:      100,
		MoveIDs: []string{"tackle"},
	}
}

// NewPlayer builds a one-Mon Player fixture.
func NewPlayer(id, name string) Player {
	return Player{
		ID:   id,
		Name: name,
		Team: []TeamMon{NewTeamMon(RandomMonName())},
	}
}

// AssertBattleID asserts that a battle ID is valid.
func AssertBattleID(t *testing.T, battleID string) {
	require.NotEmpty(t, battleID, "battle ID should not be empty")
	require.Len(t, battleID, 36, "battle ID should be a UUID (36 characters)")
}

// AssertLogNotEmpty asserts that a battle log has at least one line.
func AssertLogNotEmpty(t *testing.T, lines []string) {
	require.NotNil(t, lines, "log lines should not be nil")
	assert.NotEmpty(t, lines, "log should contain at least one line")
}

// WaitForServerStart waits for server to start and returns a client.
func WaitForServerStart(t *testing.T, server *TestServer) *Client {
	client := NewClient(server.BaseURL())
	err := client.WaitForHealth(30 * time.Second)
	require.NoError(t, err, "server should be healthy")
	return client
}

// TestHelper provides common test setup and teardown.
type TestHelper struct {
	t      *testing.T
	server *TestServer
	client *Client
}

// NewTestHelper creates a new test helper.
func NewTestHelper(t *testing.T) *TestHelper {
	server, err := NewTestServer()
	require.NoError(t, err, "should create test server")

	err = server.Start()
	require.NoError(t, err, "should start test server")

	client := NewClient(server.BaseURL())

	return &TestHelper{
		t:      t,
		server: server,
		client: client,
	}
}

// Cleanup cleans up test resources.
func (th *TestHelper) Cleanup() {
	if th.client != nil {
		th.client.Close()
	}
	if th.server != nil {
		th.server.Stop()
	}
}

// Server returns the test server.
func (th *TestHelper) Server() *TestServer {
	return th.server
}

// Client returns the test client.
func (th *TestHelper) Client() *Client {
	return th.client
}

// CreateTwoPlayerBattle creates a battle between two fresh one-Mon
// rosters and returns its id.
func (th *TestHelper) CreateTwoPlayerBattle() string {
	players := []Player{
		NewPlayer("p1", "Player One"),
		NewPlayer("p2", "Player Two"),
	}
	battleID, err := th.client.CreateBattle(players)
	require.NoError(th.t, err, "should create battle successfully")
	AssertBattleID(th.t, battleID)
	return battleID
}

// ErrorContains asserts that an error contains a specific message.
func ErrorContains(t *testing.T, err error, contains string) {
	require.Error(t, err, "expected an error")
	assert.Contains(t, err.Error(), contains, fmt.Sprintf("error should contain '%s'", contains))
}
