package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"enlistment-gateway/enlistment/application"
	"enlistment-gateway/enlistment/domain"
	"enlistment-gateway/enlistment/infra"
)

// enlist-race dispara N alunos contra uma mesma turma e confere que a sala
// nunca passa da capacidade.
func main() {
	students := flag.Int("students", 200, "alunos disputando a turma")
	capacity := flag.Int("capacity", 25, "capacidade da sala")
	trials := flag.Int("trials", 10, "rodadas")
	queue := flag.Int("queue", 0, "tentativas simultâneas por turma (0 desliga)")
	queueTimeout := flag.Duration("queue-timeout", 50*time.Millisecond, "espera máxima na fila da turma")
	verbose := flag.Bool("v", false, "loga cada rodada")
	flag.Parse()

	if *students <= 0 || *capacity <= 0 || *trials <= 0 {
		log.Fatalf("students, capacity and trials must be > 0")
	}

	stats := infra.NewMemoryStatsStore()
	start := time.Now()

	for trial := 1; trial <= *trials; trial++ {
		got, err := runTrial(stats, *students, *capacity, *queue, *queueTimeout)
		if err != nil {
			log.Fatalf("trial %d: %v", trial, err)
		}
		if *verbose {
			log.Printf("trial %d: enlisted=%d capacity=%d", trial, got, *capacity)
		}
		// com fila, parte dos alunos pode desistir antes do lock
		if got > *capacity || (*queue <= 0 && got != min(*students, *capacity)) {
			log.Printf("trial %d: enlisted=%d, capacity=%d students=%d", trial, got, *capacity, *students)
			os.Exit(1)
		}
	}

	total := stats.Total()
	fmt.Printf("trials=%d students=%d capacity=%d queue=%d elapsed=%s\n", *trials, *students, *capacity, *queue, time.Since(start))
	fmt.Printf("enlisted=%d rejected=%d\n", total.Enlisted, total.Rejected)
	counts, _ := stats.SectionCounts(context.Background(), raceSection)
	for outcome, n := range counts {
		fmt.Printf("  %-22s %d\n", outcome, n)
	}
}

const raceSection = "RACE1A"

func runTrial(stats domain.StatsStore, students, capacity, queue int, queueTimeout time.Duration) (int, error) {
	sec, err := newSection(capacity)
	if err != nil {
		return 0, err
	}
	cat := infra.NewCatalog()
	if err := cat.AddSection(sec); err != nil {
		return 0, err
	}

	svc := application.EnlistmentService{
		Catalog: cat,
		Roster:  infra.NewRoster(),
		Stats:   stats,

		Gate:        infra.NewSectionGate(queue),
		GateTimeout: queueTimeout,
	}
	ctx := context.Background()
	for id := 0; id < students; id++ {
		if err := svc.Register(ctx, id, nil); err != nil {
			return 0, err
		}
	}

	var (
		wg    sync.WaitGroup
		ready = make(chan struct{})
	)
	for id := 0; id < students; id++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			<-ready
			_, _ = svc.Enlist(ctx, id, sec.ID())
		}(id)
	}
	close(ready)
	wg.Wait()

	return sec.Enlisted(), nil
}

func newSection(capacity int) (*domain.Section, error) {
	period, err := domain.NewPeriod(domain.At(8, 30), domain.At(10, 0))
	if err != nil {
		return nil, err
	}
	sched, err := domain.NewSchedule(domain.MTH, period)
	if err != nil {
		return nil, err
	}
	room, err := domain.NewRoom("RACE1", capacity)
	if err != nil {
		return nil, err
	}
	subj, err := domain.NewSubject("RACE")
	if err != nil {
		return nil, err
	}
	return domain.NewSection(raceSection, sched, room, subj)
}
