package scrimbot_test

import (
	"bufio"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// dockerStage はDockerfileの1ステージ分の命令。
type dockerStage struct {
	from         string
	instructions []string
}

func readStages(t *testing.T) []dockerStage {
	t.Helper()
	f, err := os.Open("Dockerfile")
	require.NoError(t, err)
	defer f.Close()

	var stages []dockerStage
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if rest, ok := strings.CutPrefix(line, "FROM "); ok {
			stages = append(stages, dockerStage{from: rest})
			continue
		}
		require.NotEmpty(t, stages, "FROMより前に命令がある: %s", line)
		stages[len(stages)-1].instructions = append(stages[len(stages)-1].instructions, line)
	}
	require.NoError(t, sc.Err())
	return stages
}

func (s dockerStage) find(prefix string) []string {
	var out []string
	for _, in := range s.instructions {
		if strings.HasPrefix(in, prefix) {
			out = append(out, in)
		}
	}
	return out
}

type composeDependency struct {
	Condition string `yaml:"condition"`
}

type composeService struct {
	Command   []string                     `yaml:"command"`
	Ports     []string                     `yaml:"ports"`
	Networks  []string                     `yaml:"networks"`
	DependsOn map[string]composeDependency `yaml:"depends_on"`
}

type composeNetwork struct {
	Internal bool `yaml:"internal"`
}

type composeFile struct {
	Services map[string]composeService `yaml:"services"`
	Networks map[string]composeNetwork `yaml:"networks"`
}

func readCompose(t *testing.T) composeFile {
	t.Helper()
	data, err := os.ReadFile("docker-compose.yml")
	require.NoError(t, err)
	var c composeFile
	require.NoError(t, yaml.Unmarshal(data, &c))
	return c
}

func TestDockerfile_BuildsWithCgo(t *testing.T) {
	stages := readStages(t)
	require.GreaterOrEqual(t, len(stages), 2)

	build := stages[0]
	assert.True(t, strings.HasPrefix(build.from, "golang:"), "build stage: %s", build.from)

	runs := strings.Join(build.find("RUN "), "\n")
	assert.Contains(t, runs, "CGO_ENABLED=1", "go-sqlite3はcgoなしではビルドできない")
	assert.Contains(t, runs, "./cmd/scrimbot")
}

func TestDockerfile_RuntimeIsDistrolessNonroot(t *testing.T) {
	stages := readStages(t)
	final := stages[len(stages)-1]

	assert.True(t, strings.HasPrefix(final.from, "gcr.io/distroless/"), "final stage: %s", final.from)
	assert.True(t, strings.HasSuffix(final.from, ":nonroot"), "final stage: %s", final.from)
	// cgoバイナリはlibcが必要なためstaticイメージは使えない
	assert.NotContains(t, final.from, "static")
}

func TestDockerfile_HealthcheckUsesSubcommand(t *testing.T) {
	stages := readStages(t)
	final := stages[len(stages)-1]

	hc := final.find("HEALTHCHECK ")
	require.Len(t, hc, 1)
	// distrolessにはシェルもcurlもない
	assert.Contains(t, hc[0], `CMD ["/usr/local/bin/scrimbot", "healthcheck"]`)

	entry := final.find("ENTRYPOINT ")
	require.Len(t, entry, 1)
	assert.Contains(t, entry[0], "/usr/local/bin/scrimbot")
	assert.Equal(t, []string{`CMD ["serve"]`}, final.find("CMD "))
}

func TestCompose_BotWaitsForMigrations(t *testing.T) {
	c := readCompose(t)

	migrate, ok := c.Services["migrate"]
	require.True(t, ok)
	assert.Equal(t, []string{"migrate"}, migrate.Command)
	assert.Equal(t, "service_healthy", migrate.DependsOn["db"].Condition)

	bot, ok := c.Services["bot"]
	require.True(t, ok)
	assert.Equal(t, []string{"serve"}, bot.Command)
	assert.Equal(t, "service_completed_successfully", bot.DependsOn["migrate"].Condition)
}

func TestCompose_DatabaseStaysOnInternalNetwork(t *testing.T) {
	c := readCompose(t)

	db, ok := c.Services["db"]
	require.True(t, ok)
	assert.Empty(t, db.Ports, "DBはポートを公開しない")
	require.NotEmpty(t, db.Networks)
	for _, n := range db.Networks {
		assert.True(t, c.Networks[n].Internal, "db network %q should be internal", n)
	}

	// ボットだけがDiscordに出られる
	for name, svc := range c.Services {
		var egress bool
		for _, n := range svc.Networks {
			if !c.Networks[n].Internal {
				egress = true
			}
		}
		assert.Equal(t, name == "bot", egress, "service %q egress", name)
	}
}

func TestCompose_OpsPortBoundToLoopback(t *testing.T) {
	bot := readCompose(t).Services["bot"]
	require.Len(t, bot.Ports, 1)
	assert.True(t, strings.HasPrefix(bot.Ports[0], "127.0.0.1:"), "ops port: %s", bot.Ports[0])
}
