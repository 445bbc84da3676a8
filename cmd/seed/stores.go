package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/matdori/matdori-backend/internal/app/model"
	"github.com/xuri/excelize/v2"
)

// 헤더 이름 → 컬럼. 상호명만 필수.
var storeColumns = map[string]string{
	"상호명":  "name",
	"카테고리": "category",
	"주소":   "address",
	"전화번호": "phone_number",
	"영업시간": "open_hour",
	"이미지":  "img_url",
}

type importResult struct {
	Stores  []model.Store
	Skipped int
}

// readStores parses the first sheet. Rows without a name and repeated
// name+address pairs are skipped.
func readStores(r io.Reader) (*importResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, errors.New("no sheets found in XLSX file")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, errors.New("no data found in XLSX file")
	}

	index := make(map[string]int)
	for i, header := range rows[0] {
		if col, ok := storeColumns[strings.TrimSpace(header)]; ok {
			index[col] = i
		}
	}
	if _, ok := index["name"]; !ok {
		return nil, errors.New("missing 상호명 column")
	}

	cell := func(row []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	result := &importResult{}
	seen := make(map[string]bool)
	for _, row := range rows[1:] {
		name := cell(row, "name")
		if name == "" {
			result.Skipped++
			continue
		}

		address := cell(row, "address")
		key := name + "|" + address
		if seen[key] {
			result.Skipped++
			continue
		}
		seen[key] = true

		result.Stores = append(result.Stores, model.Store{
			Name:        name,
			Category:    cell(row, "category"),
			Address:     address,
			PhoneNumber: cell(row, "phone_number"),
			OpenHour:    cell(row, "open_hour"),
			ImgURL:      cell(row, "img_url"),
		})
	}
	return result, nil
}
