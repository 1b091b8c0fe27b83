// Package main publishes a period job trigger to the worker queue.
// It is meant to be run by an external scheduler, e.g.
//
//	trigger -job close-month -period 2025-01
//	trigger -job open-day -date 03/02/2025
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"taxiledger/internal/config"
	"taxiledger/internal/core/types"
	"taxiledger/internal/domain/jobs"
	"taxiledger/internal/infrastructure/messaging/amqp"
)

func main() {
	name := flag.String("job", "", "job name: generate-recurring, close-month, open-day, close-day, reimburse-fuel")
	period := flag.String("period", "", "period YYYY-MM (generate-recurring, close-month)")
	date := flag.String("date", "", "business date dd/MM/yyyy (defaults to the worker's today)")
	flag.Parse()

	_ = godotenv.Load()

	job, err := parseJob(*name, *period, *date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid job: %v\n", err)
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.RequireAMQP(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	client, err := amqp.NewClient(amqp.Config{
		URL:             cfg.AMQP.URL,
		Exchange:        cfg.AMQP.Exchange,
		JobQueue:        cfg.AMQP.JobQueue,
		EventRoutingKey: cfg.AMQP.EventRoutingKey,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect to AMQP: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.PublishJob(ctx, job); err != nil {
		fmt.Fprintf(os.Stderr, "failed to publish job: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("published %s\n", job.Name)
}

func parseJob(name, period, date string) (jobs.Job, error) {
	job := jobs.Job{Name: jobs.Name(name)}
	if period != "" {
		p, err := types.ParsePeriod(period)
		if err != nil {
			return jobs.Job{}, err
		}
		job.Period = p
	}
	if date != "" {
		d, err := types.ParseDate(date)
		if err != nil {
			return jobs.Job{}, err
		}
		job.Date = d
	}
	return job, job.Validate()
}
