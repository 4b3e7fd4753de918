// Copyright (c) 2025, The Handwriting Decoding Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package session

import (
	"fmt"
	"log"
	"strconv"

	"github.com/emer/etable/v2/agg"
	"github.com/emer/etable/v2/etable"
	"github.com/emer/etable/v2/etensor"
	"github.com/emer/etable/v2/split"
	"github.com/goki/mat32"
)

// Table exports the session's time series as an etable, one row per time
// bin, with the block id as a grouping column and the channel vector as a
// tensor cell. Used for aggregation and for handing full sessions to
// table-based analysis code.
func (rc *Record) Table() *etable.Table {
	nb := rc.NumBins()
	nc := rc.NumChannels()
	dt := &etable.Table{}
	dt.SetMetaData("name", fmt.Sprintf("Session%d", rc.ID))
	sch := etable.Schema{
		{Name: "Block", Type: etensor.STRING, CellShape: nil, DimNames: nil},
		{Name: "Neural", Type: etensor.FLOAT32, CellShape: []int{nc}, DimNames: []string{"Chan"}},
	}
	dt.SetFromSchema(sch, nb)
	row := etensor.NewFloat32([]int{nc}, nil, []string{"Chan"})
	for bin := 0; bin < nb; bin++ {
		dt.SetCellString("Block", bin, strconv.Itoa(rc.BlockByBin[bin]))
		copy(row.Values, rc.Row(bin))
		dt.SetCellTensor("Neural", bin, row)
	}
	return dt
}

// BlockMeansTable computes per-block channel means from the raw series,
// one row per block. This generates the meansPerBlock statistics for data
// sources that do not ship them precomputed.
func (rc *Record) BlockMeansTable() *etable.Table {
	ix := etable.NewIdxView(rc.Table())
	spl := split.GroupBy(ix, []string{"Block"})
	split.Agg(spl, "Neural", agg.AggMean)
	return spl.AggsToTable(etable.ColNameOnly)
}

// FillBlockStats populates BlockMeans and StdAll from the raw series:
// per-block channel means via BlockMeansTable, and population stddev per
// channel across the whole session. No-op for fields already present.
func (rc *Record) FillBlockStats() {
	nc := rc.NumChannels()
	if rc.BlockMeans == nil {
		mt := rc.BlockMeansTable()
		rc.BlockMeans = etensor.NewFloat32([]int{len(rc.Blocks), nc}, nil, []string{"Block", "Chan"})
		for ri := 0; ri < mt.Rows; ri++ {
			block, err := strconv.Atoi(mt.CellString("Block", ri))
			if err != nil {
				log.Printf("session %d: non-numeric block id %q in means table", rc.ID, mt.CellString("Block", ri))
				continue
			}
			bi := rc.BlockIndex(block)
			if bi < 0 {
				log.Printf("session %d: block id %d in means table not in block list", rc.ID, block)
				continue
			}
			cell := mt.CellTensor("Neural", ri)
			for ci := 0; ci < nc; ci++ {
				rc.BlockMeans.Values[bi*nc+ci] = float32(cell.FloatVal1D(ci))
			}
		}
	}
	if rc.StdAll == nil {
		rc.StdAll = make([]float32, nc)
		nb := rc.NumBins()
		if nb == 0 {
			return
		}
		mean := make([]float32, nc)
		for bin := 0; bin < nb; bin++ {
			rv := rc.Row(bin)
			for ci := range rv {
				mean[ci] += rv[ci]
			}
		}
		for ci := range mean {
			mean[ci] /= float32(nb)
		}
		for bin := 0; bin < nb; bin++ {
			rv := rc.Row(bin)
			for ci := range rv {
				dv := rv[ci] - mean[ci]
				rc.StdAll[ci] += dv * dv
			}
		}
		for ci := range rc.StdAll {
			rc.StdAll[ci] = mat32.Sqrt(rc.StdAll[ci] / float32(nb))
		}
	}
}
