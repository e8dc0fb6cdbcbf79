package tcnats

import (
	"context"
	"fmt"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// NatsContainer represents the NATS container used by the ingest tests
type NatsContainer struct {
	testcontainers.Container
}

// SetupNats starts a NATS container and returns it along with the client
// URL. The container is reused across test packages of one run.
func SetupNats(ctx context.Context) (*NatsContainer, string, error) {
	req := testcontainers.ContainerRequest{
		Image:        "nats:2.10-alpine",
		Name:         "iracelog-fuel-strategy-nats-test",
		ExposedPorts: []string{"4222/tcp"},
		WaitingFor: wait.ForLog("Server is ready").
			WithStartupTimeout(30 * time.Second),
	}
	container, err := testcontainers.GenericContainer(
		ctx,
		testcontainers.GenericContainerRequest{
			ContainerRequest: req,
			Started:          true,
			Reuse:            true,
		})
	if err != nil {
		return nil, "", err
	}
	host, err := container.Host(ctx)
	if err != nil {
		return nil, "", err
	}
	port, err := container.MappedPort(ctx, "4222/tcp")
	if err != nil {
		return nil, "", err
	}
	url := fmt.Sprintf("nats://%s:%s", host, port.Port())
	return &NatsContainer{Container: container}, url, nil
}
