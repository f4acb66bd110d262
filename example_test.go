package fernspiel_test

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/fernspiel"
	"github.com/aretw0/fernspiel/pkg/book"
	"github.com/aretw0/fernspiel/pkg/domain"
	"github.com/aretw0/fernspiel/pkg/phone"
)

func Example() {
	b := book.New("doorbell").
		State("ring").Ring(2*time.Second).On(domain.InputPickUp, "talk").
		State("talk").On(domain.InputHangUp, "bye").
		State("bye").Terminal().
		MustBuild()

	line := phone.NewSimLine()
	run, err := fernspiel.New(context.Background(), b, fernspiel.WithPhone(phone.New(line)))
	if err != nil {
		panic(err)
	}
	defer run.Close()

	line.Press(domain.InputPickUp)
	line.Press(domain.InputHangUp)

	ctx := context.Background()
	for {
		running, err := run.Tick(ctx)
		if err != nil {
			panic(err)
		}
		_, st := run.Current()
		fmt.Println(st.ID)
		if !running {
			break
		}
	}
	// Output:
	// talk
	// bye
}
