package cmd

import (
	"fmt"
	"time"

	"github.com/hako/durafmt"
	"github.com/spf13/cobra"

	"github.com/PabloCSScobar/musicxml-parser/builder"
	"github.com/PabloCSScobar/musicxml-parser/constants"
	"github.com/PabloCSScobar/musicxml-parser/expander"
	"github.com/PabloCSScobar/musicxml-parser/loader"
	"github.com/PabloCSScobar/musicxml-parser/model"
	"github.com/PabloCSScobar/musicxml-parser/scanner"
	"github.com/PabloCSScobar/musicxml-parser/sequencer"
)

var shortUnits, _ = durafmt.DefaultUnitsCoder.Decode("y:yrs,wk:wks,d:d,h:h,m:m,s:s,ms:ms,us:us")

var analyzeNoExpand bool
var analyzeVerbose bool

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeNoExpand, "no-expand", false, "skip repeat expansion")
	analyzeCmd.Flags().BoolVarP(&analyzeVerbose, "verbose", "v", false, "print every note event")
	rootCmd.AddCommand(analyzeCmd)
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyzes a score",
	Long:  `Analyzes a score`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			panic("Need 1 arg...")
		}
		a, err := AnalyzeFile(args[0], !analyzeNoExpand)
		if err != nil {
			panic("Could not analyze " + args[0] + " because: " + err.Error())
		}
		printAnalysis(a, analyzeVerbose)
	},
}

// Analysis bundles everything one run of the pipeline produced for a score.
type Analysis struct {
	Path     string
	Score    *model.Score
	Expanded *model.Score
	Events   []model.NoteEvent
	Playback []model.PlaybackEvent
}

// AnalyzeFile runs the full pipeline on one file. Structurally unusable
// documents abort with an error; content problems and a hit expansion limit
// land in the score diagnostics instead.
func AnalyzeFile(path string, expand bool) (*Analysis, error) {
	doc, err := loader.Load(path)
	if err != nil {
		return nil, err
	}
	info, err := scanner.Scan(doc)
	if err != nil {
		return nil, err
	}
	score := builder.Build(doc, info)
	expanded := score
	if expand {
		expanded, _ = expander.Expand(score, constants.GetExpandLimit())
	}
	return &Analysis{
		Path:     path,
		Score:    score,
		Expanded: expanded,
		Events:   sequencer.Sequence(score, expanded),
		Playback: sequencer.PlaybackEvents(expanded),
	}, nil
}

// DurationMs is the end of the last sounding event.
func (a *Analysis) DurationMs() float64 {
	var end float64
	for _, evt := range a.Events {
		if evt.StartTimeMs+evt.DurationMs > end {
			end = evt.StartTimeMs + evt.DurationMs
		}
	}
	return end
}

func countMeasures(s *model.Score) int {
	var n int
	for _, p := range s.Parts {
		n += len(p.Measures)
	}
	return n
}

func describeRepeats(s *model.Score) string {
	var starts, ends, voltas int
	for _, p := range s.Parts {
		for _, m := range p.Measures {
			if m.RepeatStart {
				starts++
			}
			if m.RepeatEnd {
				ends++
			}
			if len(m.VoltaNumbers) > 0 {
				voltas++
			}
		}
	}
	if starts == 0 && ends == 0 && voltas == 0 {
		return "none"
	}
	return fmt.Sprintf("%v forward, %v backward, %v volta measures", starts, ends, voltas)
}

// describeUpbeat reports an anacrusis: a first measure whose sounded content
// falls short of the nominal measure length.
func describeUpbeat(s *model.Score) string {
	if len(s.Parts) == 0 || len(s.Parts[0].Measures) == 0 {
		return "none"
	}
	m := s.Parts[0].Measures[0]
	var sounded model.Rational
	for _, n := range m.Notes {
		if end := n.StartTime.Add(n.Duration); end.Cmp(sounded) > 0 {
			sounded = end
		}
	}
	nominal := m.Time.QuarterLength()
	if !sounded.IsZero() && sounded.Cmp(nominal) < 0 {
		return fmt.Sprintf("measure %v sounds %v of %v quarters", m.Number, sounded, nominal)
	}
	return "none"
}

func printAnalysis(a *Analysis, verbose bool) {
	fmt.Printf("%v by %v (%v)\n", a.Score.Title, a.Score.Composer, a.Path)
	fmt.Printf("divisions: %v, time: %v/%v, key fifths: %v, tempo: %v BPM\n",
		a.Score.Divisions, a.Score.Time.Beats, a.Score.Time.BeatType, a.Score.KeyFifths, a.Score.TempoBPM)
	for _, p := range a.Score.Parts {
		var notes int
		for _, m := range p.Measures {
			notes += len(m.Notes)
		}
		fmt.Printf("part %v (%v, %v): %v measures, %v staves, %v notes\n",
			p.ID, p.Name, p.Instrument, len(p.Measures), p.Staves, notes)
	}
	fmt.Printf("repeats: %v\n", describeRepeats(a.Score))
	fmt.Printf("upbeat: %v\n", describeUpbeat(a.Score))
	orig := countMeasures(a.Score)
	if orig > 0 {
		expanded := countMeasures(a.Expanded)
		fmt.Printf("expansion: %v -> %v measures (x%.2f)\n", orig, expanded, float64(expanded)/float64(orig))
	}
	right, left, other := sequencer.SplitHands(a.Events)
	fmt.Printf("events: %v (%v right hand, %v left hand, %v other)\n",
		len(a.Events), len(right), len(left), len(other))
	fmt.Printf("playback events: %v\n", len(a.Playback))
	dur := time.Duration(a.DurationMs() * float64(time.Millisecond))
	fmt.Printf("duration: %v\n", durafmt.Parse(dur).LimitFirstN(2).Format(shortUnits))
	for _, e := range a.Expanded.Errors {
		fmt.Printf("error: %v\n", e)
	}
	for _, w := range a.Expanded.Warnings {
		fmt.Printf("warning: %v\n", w)
	}
	if verbose {
		for _, evt := range a.Events {
			label := evt.Pitch
			if evt.IsRest {
				label = "rest"
			}
			fmt.Printf("  m%v %v voice %v staff %v @ %.1fms for %.1fms (%v)\n",
				evt.Measure, label, evt.Voice, evt.Staff, evt.StartTimeMs, evt.DurationMs, evt.RepeatSection)
		}
	}
}
