package launcher

import (
	"fmt"
	"io"
	"strings"
	"time"

	"pump-launcher/internal/global"
)

const timeLayout = "15:04:05"

var rule = strings.Repeat("=", 60)

// Stats aggregates one launch run.
type Stats struct {
	Attempts        int
	Successes       int
	Start           time.Time
	End             time.Time
	InitialLamports uint64
	FinalLamports   uint64
}

func (s *Stats) Elapsed() time.Duration {
	return s.End.Sub(s.Start)
}

// SpentLamports is initial minus final balance; negative if the account gained funds.
func (s *Stats) SpentLamports() int64 {
	return int64(s.InitialLamports) - int64(s.FinalLamports)
}

func (s *Stats) SpentSOL() float64 {
	return global.SignedLamportsToSOL(s.SpentLamports())
}

// AvgTime divides by every attempted token, successful or not.
func (s *Stats) AvgTime() time.Duration {
	if s.Attempts == 0 {
		return 0
	}
	return s.Elapsed() / time.Duration(s.Attempts)
}

// AvgSpentSOL is only defined once something was created.
func (s *Stats) AvgSpentSOL() (float64, bool) {
	if s.Successes == 0 {
		return 0, false
	}
	return s.SpentSOL() / float64(s.Successes), true
}

func (s *Stats) Print(w io.Writer) {
	fmt.Fprintf(w, "\n%s\n", rule)
	fmt.Fprintf(w, "📊 MEME CREATION STATISTICS\n")
	fmt.Fprintf(w, "%s\n", rule)
	fmt.Fprintf(w, "🎯 Successful Creations: %d/%d\n", s.Successes, s.Attempts)
	fmt.Fprintf(w, "⏱️  Total Time: %.2f seconds\n", s.Elapsed().Seconds())
	fmt.Fprintf(w, "⏱️  Average Time per Meme: %.2f seconds\n", s.AvgTime().Seconds())
	fmt.Fprintf(w, "💰 Initial SOL Balance: %.4f SOL\n", global.LamportsToSOL(s.InitialLamports))
	fmt.Fprintf(w, "💰 Final SOL Balance: %.4f SOL\n", global.LamportsToSOL(s.FinalLamports))
	fmt.Fprintf(w, "💸 Total SOL Spent: %.4f SOL\n", s.SpentSOL())
	if avg, ok := s.AvgSpentSOL(); ok {
		fmt.Fprintf(w, "💸 Average SOL per Meme: %.4f SOL\n", avg)
	}
	fmt.Fprintf(w, "⏰ Finished at: %s\n", s.End.Format(timeLayout))
	fmt.Fprintf(w, "%s\n", rule)
}
