package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/matdori/matdori-backend/config"
	"github.com/matdori/matdori-backend/internal/app/repository"
	"github.com/matdori/matdori-backend/internal/db"
)

func main() {
	batchSize := flag.Int("batch", 500, "insert batch size")
	yes := flag.Bool("y", false, "skip confirmation")
	flag.Parse()

	// 명령줄 인자 확인
	if flag.NArg() < 1 {
		log.Fatal("Usage: go run ./cmd/seed [-batch N] [-y] <xlsx_file_path>")
	}
	filePath := flag.Arg(0)

	// 설정 로드
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	// DB 연결
	conn, err := db.Initialize(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(conn); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	storeRepo := repository.NewStoreRepository(conn)

	// XLSX 파일 읽기
	fmt.Printf("Reading XLSX file: %s\n", filePath)
	f, err := os.Open(filePath)
	if err != nil {
		log.Fatal("Failed to open XLSX:", err)
	}
	defer f.Close()

	result, err := readStores(f)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Stores to import: %d (skipped rows: %d)\n", len(result.Stores), result.Skipped)

	if !*yes {
		fmt.Print("Do you want to proceed with the import? (yes/no): ")
		var confirm string
		fmt.Scanln(&confirm)
		if confirm != "yes" && confirm != "y" {
			fmt.Println("Import cancelled.")
			return
		}
	}

	// 배치로 저장
	inserted, err := storeRepo.BulkCreate(result.Stores, *batchSize)
	if err != nil {
		log.Fatal("Failed to bulk create stores:", err)
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Stores inserted: %d (already present: %d)\n", inserted, int64(len(result.Stores))-inserted)
}
