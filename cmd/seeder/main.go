package main

import (
	"bufio"
	"context"
	"flag"
	"iter"
	"log/slog"
	"os"

	"github.com/engramdb/engram"
	"github.com/engramdb/engram/ingestion"
)

var thoughts = []string{
	"Had coffee with Sarah at Blue Bottle this morning, we talked about her new startup.",
	"Feeling anxious about the product launch tomorrow.",
	"Went hiking with Marco up Mount Tam, the fog cleared just as we reached the top.",
	"Interview at Acme Corp went better than expected, the panel liked my systems answer.",
	"Grandma's lasagna recipe finally turned out right on the third attempt.",
	"Long call with Dana about moving to Portland next spring.",
	"The standup meeting ran forty minutes over again, need to raise this with Priya.",
	"Finished reading The Overstory, still thinking about the chestnut tree.",
	"Morning run along the river, legs felt heavy but the sunrise was worth it.",
	"Booked flights to Lisbon for the October conference.",
	"Tom's birthday dinner at the Ethiopian place on Division, everyone came.",
	"Nervous energy all day before the recital, then it went perfectly.",
	"Planted tomatoes and basil in the community garden plot.",
	"The dentist says the crown can wait until January.",
	"Brainstormed the thesis outline with Professor Lin, she suggested narrowing to two case studies.",
	"Rainy Sunday, stayed in and fixed the leaky faucet in the bathroom.",
	"First session with the new therapist, mostly talked about work stress.",
	"Watched the eclipse from the roof with the neighbors.",
	"Signed the lease on the apartment near Dolores Park.",
	"Mom called to say the surgery went well and Dad is resting.",
	"Team offsite in Santa Cruz, the trust exercises were less awkward than feared.",
	"Learned three new chords, can almost play the whole song now.",
	"The machine learning reading group picked the attention paper for next week.",
	"Sold the old bike to a student for fifty dollars.",
	"Quiet dinner alone, tried the ramen place that just opened on 24th.",
	"Excited about the pottery class starting Thursday.",
	"Missed the bus and walked the whole way home in the rain, oddly calming.",
	"Aunt June is visiting for the holidays, need to clean the guest room.",
	"The demo crashed twice in front of the investors, recovering over drinks with the team.",
	"Sketched the garden redesign, moving the herbs to the sunny corner.",
	"Volunteered at the food bank with Raj, busiest shift they have had all year.",
	"The cat finally let the new kitten share the couch.",
	"Deep work morning, finished the entire migration plan before lunch.",
	"Caught up with Elena over video, her daughter starts school next month.",
	"Tried meditation before bed, fell asleep in four minutes.",
	"The marathon training plan starts Monday, eighteen weeks out.",
	"Discussed the merger rumors with Omar at lunch, nobody knows anything.",
	"Picked apples at the orchard with the kids, came home with three full bags.",
	"The landlord agreed to repaint the kitchen before we move in.",
	"Heard back from the grant committee, resubmission due in March.",
	"Drove to Tahoe for the weekend, first snow of the season on the pass.",
	"The book club argued about the ending for a solid hour.",
	"Fixed the flaky test that has been haunting the build for a month.",
	"Coffee with my old manager Steve, he is leaving for a climate nonprofit.",
	"The flight home was delayed five hours, finished two podcasts and a crossword.",
	"Baked sourdough for the block party, the crumb finally came out open.",
	"Felt proud watching Maya present her science fair project.",
	"The insurance claim for the fender bender finally settled.",
	"Night swim at the quarry with college friends, water still warm in September.",
	"Started journaling in the mornings instead of checking the phone.",
}

var (
	seedFileName = flag.String("src", "", "file of seed data, one thought per line")
	dbPath       = flag.String("db", "./engram_db", "path to the database directory")
	userID       = flag.String("user", "default", "user id to own the seeded thoughts")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

// linesFromFile returns an iterator over lines in a file.
func linesFromFile(filename string) (iter.Seq[string], error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	return func(yield func(string) bool) {
		defer f.Close()
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			if !yield(scanner.Text()) {
				return
			}
		}
	}, nil
}

// linesFromSlice returns an iterator over a slice of strings.
func linesFromSlice(lines []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, line := range lines {
			if !yield(line) {
				return
			}
		}
	}
}

// ingestBatched reads from a source iterator and ingests thoughts in batches.
func ingestBatched(ctx context.Context, pipeline *ingestion.Pipeline, user string, source iter.Seq[string], batchSize int) error {
	batch := make([]string, 0, batchSize)

	for line := range source {
		batch = append(batch, line)
		if len(batch) == batchSize {
			if _, err := pipeline.Ingest(ctx, user, batch, nil); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}

	if len(batch) > 0 {
		if _, err := pipeline.Ingest(ctx, user, batch, nil); err != nil {
			return err
		}
	}

	return nil
}

func main() {
	db, err := engram.NewDatabase(*dbPath)
	if err != nil {
		panic(err)
	}
	defer db.Close()

	ingester, err := db.NewIngestionPipeline()
	if err != nil {
		panic(err)
	}
	defer ingester.Release()

	ctx := context.Background()

	var source iter.Seq[string]
	if seedFileName != nil && *seedFileName != "" {
		source, err = linesFromFile(*seedFileName)
		if err != nil {
			panic(err)
		}
	} else {
		source = linesFromSlice(thoughts)
	}

	// Ingest in batches of 5
	if err := ingestBatched(ctx, ingester, *userID, source, 5); err != nil {
		panic(err)
	}
}
