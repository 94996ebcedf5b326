package tablebase

import "github.com/kraktus/helpmate-tb/internal/board"

// Tagger runs the backward (retrograde) pass over one material
// configuration's Common.AllPos, starting from the exactly-known positions
// a Generator queued and propagating outcomes to their predecessors via
// retro-moves, one ply at a time. Grounded on generation.rs's Tagger.
type Tagger struct {
	common *Common
}

// NewTagger wraps an already-generated Common for tagging.
func NewTagger(common *Common) *Tagger {
	return &Tagger{common: common}
}

// ProcessPositions drains the desired-outcome queue completely before the
// losing queue: the winning side's mates must be distance-labeled first so
// that, when the losing side's forced losses are processed next, every
// predecessor they reach already has a final (or at least improvable)
// outcome to compare against.
func (t *Tagger) ProcessPositions(queue Queue) {
	t.processOneQueue(NewOneQueue(queue.DesiredOutcomePosToProcess, len(t.common.AllPos)))
	t.processOneQueue(NewOneQueue(queue.LosingPosToProcess, len(t.common.AllPos)))
	t.finalizeUnknownAsDraws()
}

func (t *Tagger) processOneQueue(oq *OneQueue) {
	t.common.Counter = 0
	atLeastOneProcessed := true
	for atLeastOneProcessed {
		atLeastOneProcessed = false
		for {
			iwt, ok := oq.PopFront()
			if !ok {
				break
			}
			atLeastOneProcessed = true
			t.common.Counter++

			l, err := t.common.QueueIndexer.Decode(t.common.Material, iwt.Idx)
			if err != nil {
				continue
			}
			l.Turn = board.Color(iwt.Turn)

			canon, _ := Canonicalize(l)
			allPosIdx, err := t.common.DenseIndexer.Encode(canon)
			if err != nil {
				continue
			}
			out := t.common.Get(allPosIdx, canon.Turn).Outcome

			for _, pred := range RetroMoves(l) {
				predCanon, _ := Canonicalize(pred)
				predQueueIdx, err := t.common.QueueIndexer.Encode(predCanon)
				if err != nil {
					continue
				}
				predAllPosIdx, err := t.common.DenseIndexer.Encode(predCanon)
				if err != nil {
					continue
				}
				predReport := t.common.Get(predAllPosIdx, predCanon.Turn)
				if !predReport.Processed {
					oq.PushBack(IndexWithTurn{Idx: predQueueIdx, Turn: byte(predCanon.Turn)})
					candidate := out.Plus1()
					if candidate.Better(predReport.Outcome) {
						predReport.Outcome = candidate
					}
					predReport.Processed = true
					t.common.Set(predAllPosIdx, predCanon.Turn, predReport)
				}
			}
		}
		oq.Swap()
	}
}

// finalizeUnknownAsDraws converts every still-Unprocessed(Unknown) slot to
// Processed(Draw): a position no retro-move chain ever reached is, by
// construction, one from which the desired side can never force progress.
func (t *Tagger) finalizeUnknownAsDraws() {
	for i := range t.common.AllPos {
		for turn := 0; turn < 2; turn++ {
			r := t.common.AllPos[i][turn]
			if !r.Processed && r.Outcome == Unknown {
				t.common.AllPos[i][turn] = NewProcessed(Draw)
			}
		}
	}
}
