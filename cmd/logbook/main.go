// cmd/logbook runs the asynchronous log worker: it pops action records
// from the Redis queue and persists them to the logs table in batches.
package main

import (
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/chinazes/secretsanta/internal/database"
	"github.com/chinazes/secretsanta/internal/logbook"
)

func main() {
	logger := logrus.New()

	database.ConnectDB()

	consumer := logbook.NewConsumer(logger)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		consumer.Stop()
	}()

	consumer.Run()
}
