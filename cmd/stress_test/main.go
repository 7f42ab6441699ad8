// Stress tool: fires concurrent orders at one contended product and reports
// how the version-checked update path resolves the races. Conflicted orders
// are retried with a fresh read, so the run ends with either a success or an
// insufficient-stock rejection per request.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/rafaelpierri/andela-assessment/internal/adapter/storage"
	"github.com/rafaelpierri/andela-assessment/internal/core/domain"
	"github.com/rafaelpierri/andela-assessment/internal/core/service"
)

const (
	initialStock  = 20
	totalRequests = 50
	maxAttempts   = 10
)

func main() {
	ctx := context.Background()

	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		dsn = "root:root@tcp(localhost:3306)/inventory?parseTime=true"
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		log.Fatalf("failed to connect mysql: %v", err)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("failed to ping mysql: %v", err)
	}

	repo := storage.NewMySQLAdapter(db)
	orderService := service.NewOrderService(repo, nil, zap.NewNop())

	product, err := repo.Create(ctx, &domain.Product{
		Name:     fmt.Sprintf("stress-item-%d", time.Now().UnixNano()),
		Category: "stress",
		Price:    9.99,
		Stock:    initialStock,
	})
	if err != nil {
		log.Fatalf("failed to create product: %v", err)
	}

	var successCount, soldOutCount, retryCount atomic.Int32
	var wg sync.WaitGroup

	start := time.Now()
	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			items := []domain.OrderItem{{ProductID: product.ID, Quantity: 1}}
			for attempt := 0; attempt < maxAttempts; attempt++ {
				err := orderService.Process(ctx, items)
				if err == nil {
					successCount.Add(1)
					return
				}
				if errors.Is(err, domain.ErrInsufficientStock) {
					soldOutCount.Add(1)
					return
				}
				var conflict *domain.VersionConflictError
				if errors.As(err, &conflict) {
					retryCount.Add(1)
					continue
				}
				log.Printf("unexpected error: %v", err)
				return
			}
		}()
	}
	wg.Wait()
	elapsed := time.Since(start)

	remaining, err := repo.FindOne(ctx, product.ID)
	if err != nil {
		log.Fatalf("failed to re-read product: %v", err)
	}

	fmt.Printf("requests:      %d\n", totalRequests)
	fmt.Printf("successes:     %d\n", successCount.Load())
	fmt.Printf("sold out:      %d\n", soldOutCount.Load())
	fmt.Printf("conflict retries: %d\n", retryCount.Load())
	fmt.Printf("final stock:   %d (started at %d)\n", remaining.Stock, initialStock)
	fmt.Printf("elapsed:       %s\n", elapsed)

	if int(successCount.Load()) != initialStock {
		fmt.Println("WARNING: successes != initial stock, lost or phantom updates detected")
	}
}
