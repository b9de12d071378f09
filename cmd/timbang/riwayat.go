package main

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kirillkom/kiriman-ayam/internal/core/domain"
	"github.com/kirillkom/kiriman-ayam/internal/infrastructure/export/xlsx"
	"github.com/kirillkom/kiriman-ayam/internal/infrastructure/storage/localfs"
)

const dateLayout = "02/01/2006, 15.04"

func newRiwayatCmd(c *cli) *cobra.Command {
	var (
		filter domain.BatchFilter
		page   int
	)
	cmd := &cobra.Command{
		Use:   "riwayat",
		Short: "List submitted batches, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			batches, err := c.api.ListRecent(cmd.Context())
			if err != nil {
				return err
			}
			c.warnOffline(cmd)

			result := domain.Paginate(domain.FilterBatches(batches, filter), page, c.cfg.PageSize)
			writeHistory(cmd.OutOrStdout(), result, filter, time.Local)
			return nil
		},
	}
	cmd.Flags().StringVar(&filter.ShipmentName, "kiriman", "", "filter by shipment name (case-insensitive substring)")
	cmd.Flags().StringVar(&filter.PONumber, "po", "", "filter by PO number (case-insensitive substring)")
	cmd.Flags().IntVar(&page, "page", 1, "page to show")

	cmd.AddCommand(newRiwayatDetailCmd(c))
	return cmd
}

func newRiwayatDetailCmd(c *cli) *cobra.Command {
	var export bool
	cmd := &cobra.Command{
		Use:   "detail <id>",
		Short: "Show one batch with its statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid batch id %q", args[0])
			}
			batch, err := c.api.GetBatch(cmd.Context(), id)
			if err != nil {
				return err
			}

			detail := domain.NewBatchDetail(*batch)
			writeDetail(cmd.OutOrStdout(), detail, time.Local)
			if !export {
				return nil
			}

			path, err := exportDetail(cmd, c.cfg.ClientExportDir, *batch)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nFile tersimpan: %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&export, "export", false, "write the detail workbook to the export directory")
	return cmd
}

func exportDetail(cmd *cobra.Command, dir string, batch domain.ShipmentBatch) (string, error) {
	storage, err := localfs.New(dir)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := xlsx.New(time.Local).RenderDetail(&buf, batch); err != nil {
		return "", fmt.Errorf("render detail workbook: %w", err)
	}
	name := domain.DetailExportName(batch.ShipmentName, batch.PONumber, time.Now())
	if err := storage.Save(cmd.Context(), name, &buf); err != nil {
		return "", fmt.Errorf("save detail workbook: %w", err)
	}
	return filepath.Join(dir, name), nil
}

func writeHistory(w io.Writer, page domain.Page[domain.ShipmentBatch], filter domain.BatchFilter, loc *time.Location) {
	if len(page.Items) == 0 {
		if filter.IsEmpty() {
			fmt.Fprintln(w, "Belum ada riwayat")
		} else {
			fmt.Fprintln(w, "Tidak ada data yang cocok dengan filter")
		}
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "No\tID\tNama Kiriman\tNomor PO\tTotal\tDiterima\tDitolak\t%\tJumlah\tRata-rata\tMax\tMin\tTanggal")
	offset := (page.Page - 1) * page.PageSize
	for i, b := range page.Items {
		stats := b.Stats()
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%d\t%d\t%d\t%s%%\t%s\t%s\t%s\t%s\t%s\n",
			offset+i+1,
			b.ID,
			b.ShipmentName,
			b.PONumber,
			b.Count,
			stats.Accepted,
			stats.Rejected,
			domain.FormatFixed(stats.AcceptanceRate, 1),
			domain.FormatFixed(stats.Sum, 2),
			domain.FormatFixed(b.Mean, 2),
			domain.FormatFixed(b.Max, 1),
			domain.FormatFixed(b.Min, 1),
			b.CreatedAt.In(loc).Format(dateLayout),
		)
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "\nHalaman %d dari %d (%d data)\n", page.Page, page.TotalPages, page.TotalItems)
}

func writeDetail(w io.Writer, detail domain.BatchDetail, loc *time.Location) {
	b := detail.Batch
	fmt.Fprintf(w, "Riwayat #%d\n", b.ID)
	fmt.Fprintf(w, "Nama Kiriman : %s\n", b.ShipmentName)
	fmt.Fprintf(w, "Nomor PO     : %s\n", b.PONumber)
	fmt.Fprintf(w, "Tanggal      : %s\n\n", b.CreatedAt.In(loc).Format(dateLayout))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	lines := [][2]string{
		{"Total Data", strconv.Itoa(detail.Stats.Count)},
		{"Diterima", strconv.Itoa(detail.Stats.Accepted)},
		{"Ditolak", strconv.Itoa(detail.Stats.Rejected)},
		{"Persentase Diterima", domain.FormatFixed(detail.Stats.AcceptanceRate, 1) + "%"},
		{"Jumlah (Sum)", domain.FormatFixed(detail.Stats.Sum, 2)},
		{"Rata-rata", domain.FormatFixed(b.Mean, 2) + " kg"},
		{"Nilai Tertinggi", domain.FormatFixed(b.Max, 1) + " kg"},
		{"Nilai Terendah", domain.FormatFixed(b.Min, 1) + " kg"},
	}
	for _, line := range lines {
		fmt.Fprintf(tw, "%s\t%s\n", line[0], line[1])
	}
	_ = tw.Flush()

	fmt.Fprintln(w, "\nData Input (* = reject)")
	for _, row := range domain.ChunkRows(b.Readings, domain.ExportColumns) {
		cells := make([]string, 0, len(row))
		for _, cell := range row {
			if !cell.Filled {
				continue
			}
			text := domain.FormatFixed(cell.Value, 2)
			if cell.Rejected {
				text += "*"
			}
			cells = append(cells, text)
		}
		fmt.Fprintln(w, strings.Join(cells, " "))
	}

	if len(detail.RejectedReadings) > 0 {
		fmt.Fprintf(w, "\nData Ditolak (%d): jumlah %s, rata-rata %s\n",
			detail.RejectedStats.Count,
			domain.FormatFixed(detail.RejectedStats.Sum, 2),
			domain.FormatFixed(detail.RejectedStats.Mean, 2),
		)
	}
}
