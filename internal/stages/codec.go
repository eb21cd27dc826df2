// Package stages wires the standalone component packages (hits, evidence,
// partition, features, classifier, confidence, mapping, merge, final) into
// the 24-entry pipeline.Registry, reading and writing the tab-separated
// intermediate files each stage produces for the next (spec.md §5: stages
// communicate only through file artifacts).
package stages

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sarat-asymmetrica/dpam/internal/evidence"
	"github.com/sarat-asymmetrica/dpam/internal/hits"
	"github.com/sarat-asymmetrica/dpam/internal/resrange"
)

// writeHits and readHits round-trip a []hits.Hit through a tab-separated
// file in this package's own encoding, used only between pipeline stages.
func writeHits(path string, all []hits.Hit) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("stages: create %s: %w", path, err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	for _, h := range all {
		if err := writeHitLines(w, h); err != nil {
			return err
		}
	}
	return w.Flush()
}

func readHits(path string) ([]hits.Hit, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("stages: open %s: %w", path, err)
	}
	defer f.Close()
	return readHitsReader(f)
}

func readHitsReader(r io.Reader) ([]hits.Hit, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	var out []hits.Hit
	for {
		h, ok, err := readOneHit(sc)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		out = append(out, h)
	}
	return out, nil
}

// writeScored and readScored round-trip []evidence.Scored through a
// tab-separated file: the embedded Hit's fields (as writeHits encodes
// them) plus the four derived stage 8 statistics on a trailing line.
func writeScored(path string, all []evidence.Scored) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("stages: create %s: %w", path, err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	for _, s := range all {
		if err := writeHitLines(w, s.Hit); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			strconv.FormatFloat(s.QScore, 'f', -1, 64),
			strconv.FormatFloat(s.ZTile, 'f', -1, 64),
			strconv.FormatFloat(s.QTile, 'f', -1, 64),
			strconv.FormatFloat(s.Rank, 'f', -1, 64)); err != nil {
			return err
		}
	}
	return w.Flush()
}

func readScored(path string) ([]evidence.Scored, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("stages: open %s: %w", path, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	var out []evidence.Scored
	for {
		h, ok, err := readOneHit(sc)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		if !sc.Scan() {
			break
		}
		fields := strings.Split(strings.TrimSpace(sc.Text()), "\t")
		if len(fields) < 4 {
			continue
		}
		qs, _ := strconv.ParseFloat(fields[0], 64)
		zt, _ := strconv.ParseFloat(fields[1], 64)
		qt, _ := strconv.ParseFloat(fields[2], 64)
		rk, _ := strconv.ParseFloat(fields[3], 64)
		out = append(out, evidence.Scored{
			Hit:           h,
			QScore:        qs,
			ZTile:         zt,
			QTile:         qt,
			Rank:          rk,
			QueryRange:    resrange.Format(h.QueryResids),
			TemplateRange: resrange.Format(h.TemplateResids),
		})
	}
	return out, sc.Err()
}

// writeHitLines and readOneHit factor the 2-line hit encoding out of
// writeHits/readHitsReader so writeScored/readScored can reuse it for the
// embedded hits.Hit inside each evidence.Scored.
func writeHitLines(w *bufio.Writer, h hits.Hit) error {
	if _, err := fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%d\n",
		h.Channel, h.TemplateID, h.ShortID, h.HPath,
		strconv.FormatFloat(h.Probability, 'f', -1, 64),
		strconv.FormatFloat(h.ZScore, 'f', -1, 64),
		resrange.Format(h.QueryResids), h.TemplateLength); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%s\n", resrange.Format(h.TemplateResids))
	return err
}

func readOneHit(sc *bufio.Scanner) (hits.Hit, bool, error) {
	var head string
	for {
		if !sc.Scan() {
			return hits.Hit{}, false, sc.Err()
		}
		head = strings.TrimSpace(sc.Text())
		if head != "" {
			break
		}
	}
	if !sc.Scan() {
		return hits.Hit{}, false, nil
	}
	tres, err := resrange.Parse(strings.TrimSpace(sc.Text()))
	if err != nil {
		return hits.Hit{}, false, err
	}
	fields := strings.Split(head, "\t")
	if len(fields) < 8 {
		return hits.Hit{}, false, nil
	}
	ch, _ := strconv.Atoi(fields[0])
	prob, _ := strconv.ParseFloat(fields[4], 64)
	z, _ := strconv.ParseFloat(fields[5], 64)
	qres, err := resrange.Parse(fields[6])
	if err != nil {
		return hits.Hit{}, false, err
	}
	tlen, _ := strconv.Atoi(fields[7])
	return hits.Hit{
		Channel:        hits.Channel(ch),
		TemplateID:     fields[1],
		ShortID:        fields[2],
		HPath:          fields[3],
		Probability:    prob,
		ZScore:         z,
		QueryResids:    qres,
		TemplateResids: tres,
		TemplateLength: tlen,
	}, true, nil
}

// writeSupport and readSupport round-trip []evidence.Support: each
// domain's sequence and structural Scored lists, tagged by channel so a
// single reader reconstructs both.
func writeSupport(path string, all []evidence.Support) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("stages: create %s: %w", path, err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	for _, sp := range all {
		if _, err := fmt.Fprintf(w, "DOMAIN\t%d\t%d\t%d\n", sp.DomainID, len(sp.Sequence), len(sp.Structural)); err != nil {
			return err
		}
		for _, s := range sp.Sequence {
			if err := writeHitLines(w, s.Hit); err != nil {
				return err
			}
		}
		for _, s := range sp.Structural {
			if err := writeHitLines(w, s.Hit); err != nil {
				return err
			}
		}
	}
	return w.Flush()
}

func readSupport(path string) ([]evidence.Support, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("stages: open %s: %w", path, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	var out []evidence.Support
	for sc.Scan() {
		head := strings.TrimSpace(sc.Text())
		if head == "" {
			continue
		}
		fields := strings.Split(head, "\t")
		if len(fields) < 4 || fields[0] != "DOMAIN" {
			continue
		}
		domainID, _ := strconv.Atoi(fields[1])
		numSeq, _ := strconv.Atoi(fields[2])
		numStruct, _ := strconv.Atoi(fields[3])
		sp := evidence.Support{DomainID: domainID}
		for i := 0; i < numSeq; i++ {
			h, ok, err := readOneHit(sc)
			if err != nil {
				return nil, err
			}
			if !ok {
				break
			}
			sp.Sequence = append(sp.Sequence, evidence.Scored{Hit: h,
				QueryRange: resrange.Format(h.QueryResids), TemplateRange: resrange.Format(h.TemplateResids)})
		}
		for i := 0; i < numStruct; i++ {
			h, ok, err := readOneHit(sc)
			if err != nil {
				return nil, err
			}
			if !ok {
				break
			}
			sp.Structural = append(sp.Structural, evidence.Scored{Hit: h,
				QueryRange: resrange.Format(h.QueryResids), TemplateRange: resrange.Format(h.TemplateResids)})
		}
		out = append(out, sp)
	}
	return out, sc.Err()
}
