package simstate

import "testing"

func TestTryAdmitFromQ1RequiresSufficientTokens(t *testing.T) {
	s := New(10)
	s.Lock()
	s.TokenBucket = 2
	p := &Packet{Num: 1, TokensRequired: 5}
	s.EnqueueQ1(p, 0)

	if _, _, ok := s.TryAdmitFromQ1(1000); ok {
		t.Fatal("TryAdmitFromQ1 admitted a packet with insufficient tokens")
	}
	if s.Q1.Len() != 1 {
		t.Fatalf("Q1.Len() = %d, want 1 (untouched)", s.Q1.Len())
	}
	s.Unlock()
}

func TestTryAdmitFromQ1DeductsTokensAndMovesToQ2(t *testing.T) {
	s := New(10)
	s.Lock()
	s.TokenBucket = 5
	p := &Packet{Num: 1, TokensRequired: 3}
	s.EnqueueQ1(p, 0)

	got, occupancy, ok := s.TryAdmitFromQ1(1500)
	if !ok {
		t.Fatal("TryAdmitFromQ1 failed to admit a packet with sufficient tokens")
	}
	if got != p {
		t.Fatalf("TryAdmitFromQ1 returned %+v, want the queued packet", got)
	}
	if occupancy != 1500 {
		t.Fatalf("q1OccupancyUS = %d, want 1500", occupancy)
	}
	if s.TokenBucket != 2 {
		t.Fatalf("TokenBucket = %d, want 2 after deducting 3", s.TokenBucket)
	}
	if !s.Q1.Empty() {
		t.Fatal("Q1 should be empty after admission")
	}
	if s.Q2.Len() != 1 {
		t.Fatalf("Q2.Len() = %d, want 1", s.Q2.Len())
	}
	if s.TotalQ1TimeUS != 1500 {
		t.Fatalf("TotalQ1TimeUS = %d, want 1500", s.TotalQ1TimeUS)
	}
	s.Unlock()
}

func TestOfferTokenRespectsCapacity(t *testing.T) {
	s := New(2)
	s.Lock()
	defer s.Unlock()

	for i := 0; i < 2; i++ {
		accepted, level := s.OfferToken()
		if !accepted {
			t.Fatalf("token %d rejected before reaching capacity", i)
		}
		if level != int64(i+1) {
			t.Fatalf("bucketLevel = %d, want %d", level, i+1)
		}
	}
	accepted, _ := s.OfferToken()
	if accepted {
		t.Fatal("token accepted beyond bucket capacity")
	}
	if s.AcceptedTokens != 2 || s.DroppedTokens != 1 {
		t.Fatalf("AcceptedTokens=%d DroppedTokens=%d, want 2 and 1", s.AcceptedTokens, s.DroppedTokens)
	}
}

func TestRecordDepartureUsesPreIncrementCountAsDenominator(t *testing.T) {
	s := New(10)
	s.Lock()
	defer s.Unlock()

	p1 := &Packet{Num: 1, ArrivalTime: 0}
	s.BeginService(p1, 0)
	serviceUS, sojournUS := s.RecordDeparture(p1, 1, 1000)
	if serviceUS != 1000 || sojournUS != 1000 {
		t.Fatalf("first departure serviceUS=%d sojournUS=%d, want 1000 each", serviceUS, sojournUS)
	}
	if s.CompletedPackets != 1 {
		t.Fatalf("CompletedPackets = %d, want 1", s.CompletedPackets)
	}
	if s.AvgServiceTimeUS != 1000 {
		t.Fatalf("AvgServiceTimeUS = %d, want 1000 after one sample", s.AvgServiceTimeUS)
	}
	if s.AvgXMS != 1.0 {
		t.Fatalf("AvgXMS = %v, want 1.0", s.AvgXMS)
	}

	p2 := &Packet{Num: 2, ArrivalTime: 0}
	s.BeginService(p2, 1000)
	s.RecordDeparture(p2, 1, 4000) // 3000us = 3ms service

	if s.CompletedPackets != 2 {
		t.Fatalf("CompletedPackets = %d, want 2", s.CompletedPackets)
	}
	// avg of 1000us and 3000us = 2000us
	if s.AvgServiceTimeUS != 2000 {
		t.Fatalf("AvgServiceTimeUS = %d, want 2000", s.AvgServiceTimeUS)
	}
	if s.TotalS1TimeUS != 4000 {
		t.Fatalf("TotalS1TimeUS = %d, want 4000", s.TotalS1TimeUS)
	}
}

func TestDrainQ1AndQ2AreIdempotent(t *testing.T) {
	s := New(10)
	s.Lock()
	defer s.Unlock()

	s.EnqueueQ1(&Packet{Num: 1}, 0)
	s.EnqueueQ1(&Packet{Num: 2}, 0)
	s.Q2.PushBack(&Packet{Num: 3})

	removed1 := s.DrainQ1()
	if len(removed1) != 2 {
		t.Fatalf("DrainQ1() removed %d packets, want 2", len(removed1))
	}
	if s.RemovedPackets != 2 {
		t.Fatalf("RemovedPackets = %d, want 2", s.RemovedPackets)
	}
	if again := s.DrainQ1(); len(again) != 0 {
		t.Fatalf("second DrainQ1() removed %d packets, want 0 (idempotent)", len(again))
	}

	removed2 := s.DrainQ2()
	if len(removed2) != 1 {
		t.Fatalf("DrainQ2() removed %d packets, want 1", len(removed2))
	}
	if s.RemovedPackets != 3 {
		t.Fatalf("RemovedPackets = %d, want 3 total", s.RemovedPackets)
	}
}

func TestRecordInterArrivalIncrementalMean(t *testing.T) {
	s := New(10)
	s.Lock()
	defer s.Unlock()

	s.RecordInterArrival(1000)
	if s.AvgInterArrivalUS != 1000 || s.PacketsArrived != 1 {
		t.Fatalf("after one sample: avg=%d count=%d, want 1000 and 1", s.AvgInterArrivalUS, s.PacketsArrived)
	}
	s.RecordInterArrival(3000)
	if s.AvgInterArrivalUS != 2000 || s.PacketsArrived != 2 {
		t.Fatalf("after two samples: avg=%d count=%d, want 2000 and 2", s.AvgInterArrivalUS, s.PacketsArrived)
	}
}

func TestSnapshotCopiesFields(t *testing.T) {
	s := New(10)
	s.Lock()
	s.CompletedPackets = 7
	s.DroppedPackets = 2
	s.Unlock()

	snap := s.Snapshot()
	if snap.CompletedPackets != 7 || snap.DroppedPackets != 2 {
		t.Fatalf("Snapshot() = %+v, want CompletedPackets=7 DroppedPackets=2", snap)
	}
}
