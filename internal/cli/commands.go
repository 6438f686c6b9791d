package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/im2col/internal/im2col"
)

// errCheckFailed is returned by check when any property does not hold.
var errCheckFailed = errors.New("check failed")

func newGeometryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "geometry",
		Short: "Print the buffer sizes implied by a window geometry",
		Args:  cobra.NoArgs,
		RunE:  GeometryHandler,
	}
	addGeometryFlags(cmd)
	return cmd
}

// GeometryHandler prints output size, column width and buffer lengths.
func GeometryHandler(cmd *cobra.Command, _ []string) error {
	g, err := geometryFromFlags(cmd)
	if err != nil {
		return err
	}

	data := [][]string{
		{"image", g.ImageShape().String(), strconv.Itoa(g.ImageLen())},
		{"columns", g.ColumnShape().String(), strconv.Itoa(g.ColumnLen())},
		{"output", fmt.Sprintf("(%d, %d)", g.OutHeight(), g.OutWidth()), strconv.Itoa(g.OutHeight() * g.OutWidth())},
	}

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"BUFFER", "SHAPE", "ELEMENTS"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(data)
	table.Render()

	return nil
}

func newSpreadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spread",
		Short: "Print the column matrix of a numbered (or all-ones) image",
		Args:  cobra.NoArgs,
		RunE:  SpreadHandler,
	}
	addGeometryFlags(cmd)
	cmd.Flags().Bool("ones", false, "Fill the image with ones instead of 1..N")
	return cmd
}

// SpreadHandler prints one table row per output pixel and one column per
// (channel, kernel row, kernel col) entry.
func SpreadHandler(cmd *cobra.Command, _ []string) error {
	g, err := geometryFromFlags(cmd)
	if err != nil {
		return err
	}
	ones, _ := cmd.Flags().GetBool("ones")

	img := make([]int, g.ImageLen())
	for i := range img {
		img[i] = i + 1
		if ones {
			img[i] = 1
		}
	}
	col := make([]int, g.ColumnLen())
	if err := im2col.Spread(col, img, g); err != nil {
		return err
	}

	colCh := g.ColChannels()
	header := make([]string, 0, colCh+1)
	header = append(header, "PIXEL")
	for c := 0; c < colCh; c++ {
		cIm := c / (g.KernelH * g.KernelW)
		hOff := (c / g.KernelW) % g.KernelH
		wOff := c % g.KernelW
		header = append(header, fmt.Sprintf("C%d:%d,%d", cIm, hOff, wOff))
	}

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	for row := 0; row < g.OutHeight()*g.OutWidth(); row++ {
		line := make([]string, 0, colCh+1)
		line = append(line, fmt.Sprintf("(%d,%d)", row/g.OutWidth(), row%g.OutWidth()))
		for _, v := range col[row*colCh : (row+1)*colCh] {
			line = append(line, strconv.Itoa(v))
		}
		table.Append(line)
	}
	table.Render()

	return nil
}

func newCoverageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "coverage",
		Short: "Print how many windows read each image pixel",
		Args:  cobra.NoArgs,
		RunE:  CoverageHandler,
	}
	addGeometryFlags(cmd)
	return cmd
}

// CoverageHandler prints Gather(Spread(ones)) for the first channel, which
// is the number of windows covering each pixel.
func CoverageHandler(cmd *cobra.Command, _ []string) error {
	g, err := geometryFromFlags(cmd)
	if err != nil {
		return err
	}

	ones := make([]int, g.ImageLen())
	for i := range ones {
		ones[i] = 1
	}
	col := make([]int, g.ColumnLen())
	if err := im2col.Spread(col, ones, g); err != nil {
		return err
	}
	counts := make([]int, g.ImageLen())
	if err := im2col.Gather(counts, col, g); err != nil {
		return err
	}

	header := make([]string, 0, g.Width+1)
	header = append(header, "Y\\X")
	for x := 0; x < g.Width; x++ {
		header = append(header, strconv.Itoa(x))
	}

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	for y := 0; y < g.Height; y++ {
		line := make([]string, 0, g.Width+1)
		line = append(line, strconv.Itoa(y))
		for _, v := range counts[y*g.Width : (y+1)*g.Width] {
			line = append(line, strconv.Itoa(v))
		}
		table.Append(line)
	}
	table.Render()

	return nil
}

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify the adjoint law and parallel/serial agreement on random data",
		Args:  cobra.NoArgs,
		RunE:  CheckHandler,
	}
	addGeometryFlags(cmd)
	cmd.Flags().Int("trials", 10, "Number of random trials")
	cmd.Flags().Int64("seed", 1, "Random seed")
	cmd.Flags().Int("workers", 0, "Worker goroutines for the parallel transforms (default from IM2COL_WORKERS or NumCPU)")
	cmd.Flags().Float64("tolerance", 1e-9, "Relative tolerance for the adjoint inner products")
	return cmd
}

// CheckHandler runs random trials and fails when <Spread(x), y> differs from
// <x, Gather(y)> beyond tolerance, or when a parallel transform disagrees
// with its serial counterpart.
func CheckHandler(cmd *cobra.Command, _ []string) error {
	g, err := geometryFromFlags(cmd)
	if err != nil {
		return err
	}
	trials, _ := cmd.Flags().GetInt("trials")
	seed, _ := cmd.Flags().GetInt64("seed")
	tol, _ := cmd.Flags().GetFloat64("tolerance")
	cfg := parallelFromFlags(cmd)
	slog.Debug("check", "trials", trials, "seed", seed, "workers", cfg.NumWorkers, "parallel", cfg.Enabled)

	rng := rand.New(rand.NewSource(seed))
	random := func(n int) []float64 {
		s := make([]float64, n)
		for i := range s {
			s[i] = rng.Float64()*2 - 1
		}
		return s
	}

	sx := make([]float64, g.ColumnLen())
	psx := make([]float64, g.ColumnLen())
	gy := make([]float64, g.ImageLen())
	pgy := make([]float64, g.ImageLen())

	failed := 0
	worst := 0.0
	for trial := 0; trial < trials; trial++ {
		x := random(g.ImageLen())
		y := random(g.ColumnLen())

		if err := im2col.Spread(sx, x, g); err != nil {
			return err
		}
		if err := im2col.Gather(gy, y, g); err != nil {
			return err
		}
		if err := im2col.SpreadParallel(psx, x, g, cfg); err != nil {
			return err
		}
		if err := im2col.GatherParallel(pgy, y, g, cfg); err != nil {
			return err
		}

		lhs, rhs := floats.Dot(sx, y), floats.Dot(x, gy)
		rel := math.Abs(lhs-rhs) / math.Max(1, math.Abs(lhs))
		worst = math.Max(worst, rel)

		switch {
		case rel > tol:
			slog.Error("adjoint mismatch", "trial", trial, "spread_dot", lhs, "gather_dot", rhs, "relative", rel)
			failed++
		case !floats.Equal(sx, psx):
			slog.Error("parallel spread differs from serial", "trial", trial)
			failed++
		case !floats.Equal(gy, pgy):
			slog.Error("parallel gather differs from serial", "trial", trial)
			failed++
		default:
			slog.Debug("trial passed", "trial", trial, "spread_dot", lhs, "gather_dot", rhs)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d/%d trials passed, worst relative adjoint error %.3g\n", trials-failed, trials, worst)
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d trials", errCheckFailed, failed, trials)
	}
	return nil
}
