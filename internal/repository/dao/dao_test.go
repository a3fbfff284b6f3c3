package dao

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDB *gorm.DB

func TestMain(m *testing.M) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		log.Printf("skipping dao tests, docker unavailable: %v", err)
		os.Exit(0)
	}
	pool.MaxWait = 2 * time.Minute
	// A socket can exist but hang, so bound the probe rather than trust it.
	pool.Client.SetTimeout(10 * time.Second)
	if err = pool.Client.Ping(); err != nil {
		log.Printf("skipping dao tests, docker unavailable: %v", err)
		os.Exit(0)
	}
	pool.Client.SetTimeout(0)

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "15-alpine",
		Env: []string{
			"POSTGRES_USER=postgres",
			"POSTGRES_PASSWORD=postgres",
			"POSTGRES_DB=cidery_test",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		log.Fatalf("could not start postgres container: %v", err)
	}

	if err = pool.Retry(func() error {
		dsn := fmt.Sprintf("host=localhost port=%s user=postgres password=postgres dbname=cidery_test sslmode=disable",
			resource.GetPort("5432/tcp"))
		testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if err != nil {
			return err
		}

		sqlDB, err := testDB.DB()
		if err != nil {
			return err
		}

		return sqlDB.Ping()
	}); err != nil {
		log.Fatalf("could not connect to postgres container: %v", err)
	}

	if err = InitTables(testDB); err != nil {
		log.Fatalf("could not migrate tables: %v", err)
	}

	code := m.Run()

	if err = pool.Purge(resource); err != nil {
		log.Printf("could not purge postgres container: %v", err)
	}

	os.Exit(code)
}

func createTestVessel(t *testing.T, name string, capacityLiters string) Vessel {
	t.Helper()

	vessel, err := NewVesselDAO(testDB).Insert(context.Background(), Vessel{
		Name:           name,
		Kind:           "tank",
		CapacityLiters: decimal.RequireFromString(capacityLiters),
		Status:         "Available",
	}, 1)
	require.NoError(t, err)

	return vessel
}

func createTestBatch(t *testing.T, name string, abv string) Batch {
	t.Helper()

	batch, err := NewBatchDAO(testDB).Insert(context.Background(), Batch{
		Name:       name,
		Status:     "Fermentation",
		CurrentABV: decimal.RequireFromString(abv),
		TaxClass:   "cider",
	}, nil, 1)
	require.NoError(t, err)

	return batch
}
