package main

import (
	"reflect"
	"testing"

	"github.com/skarde/ocrkit/pkg/aipocr"
	"github.com/skarde/ocrkit/pkg/tablegrid"
)

func TestBuildRows(t *testing.T) {
	cells := []aipocr.TableCell{
		{RowStart: 1, RowEnd: 1, ColStart: 1, ColEnd: 2, Text: "成绩单"},
		{RowStart: 2, RowEnd: 2, ColStart: 1, ColEnd: 1, Text: "学号"},
		{RowStart: 2, RowEnd: 2, ColStart: 2, ColEnd: 2, Text: "姓名"},
		{RowStart: 3, RowEnd: 3, ColStart: 1, ColEnd: 1, Text: "01"},
		{RowStart: 3, RowEnd: 3, ColStart: 2, ColEnd: 2, Text: "张三"},
	}
	rec := tablegrid.NewReconstructor()

	raw := buildRows(rec, cells, true)
	wantRaw := [][]string{
		{"成绩单", ""},
		{"学号", "姓名"},
		{"01", "张三"},
	}
	if !reflect.DeepEqual(raw, wantRaw) {
		t.Errorf("raw rows = %v, want %v", raw, wantRaw)
	}

	cooked := buildRows(rec, cells, false)
	wantCooked := [][]string{
		{"学号", "姓名"},
		{"01", "张三"},
	}
	if !reflect.DeepEqual(cooked, wantCooked) {
		t.Errorf("reconstructed rows = %v, want %v", cooked, wantCooked)
	}
}
