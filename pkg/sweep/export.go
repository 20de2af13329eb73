package sweep

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	pqLocal "github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	pqWriter "github.com/xitongsys/parquet-go/writer"

	"github.com/daviszhen/flashsize/pkg/layout"
)

// Row is the flat export form of one sweep result.
type Row struct {
	Index            int64  `parquet:"name=index, type=INT64"`
	Label            string `parquet:"name=label, type=BYTE_ARRAY, convertedtype=UTF8"`
	Prototype        string `parquet:"name=prototype, type=BYTE_ARRAY, convertedtype=UTF8"`
	FlashType        string `parquet:"name=flash_type, type=BYTE_ARRAY, convertedtype=UTF8"`
	Interface        string `parquet:"name=interface, type=BYTE_ARRAY, convertedtype=UTF8"`
	BlockSize        string `parquet:"name=block_size, type=BYTE_ARRAY, convertedtype=UTF8"`
	Dies             int64  `parquet:"name=dies, type=INT64"`
	ZoneSize         string `parquet:"name=zone_size, type=BYTE_ARRAY, convertedtype=UTF8"`
	SuperBlockSize   string `parquet:"name=super_block_size, type=BYTE_ARRAY, convertedtype=UTF8"`
	LogicalDataSize  string `parquet:"name=logical_data_size, type=BYTE_ARRAY, convertedtype=UTF8"`
	LogicalMetaSize  string `parquet:"name=logical_meta_size, type=BYTE_ARRAY, convertedtype=UTF8"`
	PSLCSuperBlocks  int64  `parquet:"name=pslc_super_blocks, type=INT64"`
	PSLCSize         string `parquet:"name=pslc_size, type=BYTE_ARRAY, convertedtype=UTF8"`
	PhysicalDataSize string `parquet:"name=physical_data_size, type=BYTE_ARRAY, convertedtype=UTF8"`
	PhysicalMetaSize string `parquet:"name=physical_meta_size, type=BYTE_ARRAY, convertedtype=UTF8"`
	ReservedSize     string `parquet:"name=reserved_size, type=BYTE_ARRAY, convertedtype=UTF8"`
	ReservedBytes    int64  `parquet:"name=reserved_bytes, type=INT64"`
	Warnings         int64  `parquet:"name=warnings, type=INT64"`
	Command          string `parquet:"name=command, type=BYTE_ARRAY, convertedtype=UTF8"`
}

var csvHeader = []string{
	"index", "label", "prototype", "flash_type", "interface", "block_size", "dies",
	"zone_size", "super_block_size", "logical_data_size", "logical_meta_size",
	"pslc_super_blocks", "pslc_size", "physical_data_size", "physical_meta_size",
	"reserved_size", "reserved_bytes", "warnings", "command",
}

func (row *Row) csvRecord() []string {
	return []string{
		strconv.FormatInt(row.Index, 10),
		row.Label,
		row.Prototype,
		row.FlashType,
		row.Interface,
		row.BlockSize,
		strconv.FormatInt(row.Dies, 10),
		row.ZoneSize,
		row.SuperBlockSize,
		row.LogicalDataSize,
		row.LogicalMetaSize,
		strconv.FormatInt(row.PSLCSuperBlocks, 10),
		row.PSLCSize,
		row.PhysicalDataSize,
		row.PhysicalMetaSize,
		row.ReservedSize,
		strconv.FormatInt(row.ReservedBytes, 10),
		strconv.FormatInt(row.Warnings, 10),
		row.Command,
	}
}

func newRow(r *Result, opts layout.CommandOptions) Row {
	plan := r.Plan
	return Row{
		Index:            int64(r.Point.Index),
		Label:            r.Point.Label(),
		Prototype:        plan.Prototype,
		FlashType:        plan.FlashType,
		Interface:        string(plan.Interface),
		BlockSize:        plan.BlockSize.String(),
		Dies:             int64(plan.Dies),
		ZoneSize:         plan.ZoneSize.String(),
		SuperBlockSize:   plan.SuperBlockSize.String(),
		LogicalDataSize:  plan.LogicalDataSize.String(),
		LogicalMetaSize:  plan.LogicalMetaSize.String(),
		PSLCSuperBlocks:  int64(plan.PSLCSuperBlocks),
		PSLCSize:         plan.PSLCSize.String(),
		PhysicalDataSize: plan.PhysicalDataSize.String(),
		PhysicalMetaSize: plan.PhysicalMetaSize.String(),
		ReservedSize:     plan.ReservedSize.String(),
		ReservedBytes:    int64(plan.ReservedSize.Bytes()),
		Warnings:         int64(len(plan.Warnings)),
		Command:          plan.InsmodCommand(opts),
	}
}

func (res *Results) Rows(opts layout.CommandOptions) []Row {
	rows := make([]Row, 0, res.Len())
	res.Scan(func(r *Result) bool {
		rows = append(rows, newRow(r, opts))
		return true
	})
	return rows
}

func WriteCSV(w io.Writer, res *Results, opts layout.CommandOptions) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, row := range res.Rows(opts) {
		if err := cw.Write(row.csvRecord()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteParquet(path string, res *Results, opts layout.CommandOptions) (err error) {
	fw, err := pqLocal.NewLocalFileWriter(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := fw.Close(); err == nil {
			err = cerr
		}
	}()

	pw, err := pqWriter.NewParquetWriter(fw, new(Row), 1)
	if err != nil {
		return err
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY
	for _, row := range res.Rows(opts) {
		if err = pw.Write(row); err != nil {
			return fmt.Errorf("write parquet row %d: %w", row.Index, err)
		}
	}
	return pw.WriteStop()
}

func WriteTable(w io.Writer, res *Results) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tPOINT\tFLASH\tIFACE\tBLOCK\tZONE\tDATA\tMETA\tMEMMAP\tWARN")
	res.Scan(func(r *Result) bool {
		plan := r.Plan
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%v\t%v\t%v\t%v\t%v\t%d\n",
			r.Point.Index,
			r.Point.Label(),
			plan.FlashType,
			plan.Interface,
			plan.BlockSize,
			plan.ZoneSize,
			plan.PhysicalDataSize,
			plan.PhysicalMetaSize,
			plan.ReservedSize,
			len(plan.Warnings))
		return true
	})
	return tw.Flush()
}
