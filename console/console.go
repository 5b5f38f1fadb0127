// Package console is a line-oriented terminal front end for the browse and
// upload controllers.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/apex/log"

	"platefinder/browse"
	"platefinder/upload"
)

const helpText = `Commands:
  all            show all restaurants
  nearby         show restaurants near your location
  search <text>  filter by name, city or cuisine (empty clears)
  page <n>       go to page n
  next, prev     move one page
  show <id>      show restaurant details
  pick <path>    select a food photo
  classify       classify the selected photo
  help           show this help
  quit           exit
`

// Console reads commands from in and renders controller views to out.
type Console struct {
	in      io.Reader
	out     io.Writer
	browse  *browse.Controller
	upload  *upload.Controller
	details browse.DetailFetcher

	outMu sync.Mutex
	wg    sync.WaitGroup
}

// New wires the console to the controllers. Every controller change re-renders
// the affected view from the controller's current state.
func New(in io.Reader, out io.Writer, b *browse.Controller, u *upload.Controller, details browse.DetailFetcher) *Console {
	c := &Console{in: in, out: out, browse: b, upload: u, details: details}
	b.OnChange(func(browse.View) {
		c.print(func(w io.Writer) { RenderBrowse(w, c.browse.View()) })
	})
	u.OnChange(func(upload.View) {
		c.print(func(w io.Writer) { RenderUpload(w, c.upload.View()) })
	})
	return c
}

// Run loads the full listing and processes commands until quit, EOF or ctx is done.
// Requests still in flight are awaited before it returns.
func (c *Console) Run(ctx context.Context) error {
	defer c.Wait()

	c.print(func(w io.Writer) { fmt.Fprint(w, "Discover Restaurants. Type help for commands.\n") })
	c.async(func() { c.browse.LoadAll(ctx) })

	scanner := bufio.NewScanner(c.in)
	for {
		c.print(func(w io.Writer) { fmt.Fprint(w, "> ") })
		if !scanner.Scan() {
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return nil
		}
		if quit := c.Execute(ctx, scanner.Text()); quit {
			return nil
		}
	}
}

// Execute runs one command line and reports whether the console should exit.
// Network-bound commands run on their own goroutines.
func (c *Console) Execute(ctx context.Context, line string) bool {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(cmd) {
	case "":
	case "all":
		c.async(func() { c.browse.LoadAll(ctx) })
	case "nearby":
		c.async(func() { c.browse.LoadNearby(ctx, browse.NearbyRadiusKm) })
	case "search":
		c.browse.SetFilterText(arg)
	case "page":
		n, err := strconv.Atoi(arg)
		if err != nil {
			c.printf("page needs a number, got %q\n", arg)
			return false
		}
		c.browse.GoToPage(n)
	case "next":
		c.browse.NextPage()
	case "prev":
		c.browse.PrevPage()
	case "show":
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			c.printf("show needs a restaurant id, got %q\n", arg)
			return false
		}
		c.async(func() {
			d := browse.LoadDetail(ctx, c.details, id)
			c.print(func(w io.Writer) { RenderDetail(w, d) })
		})
	case "pick":
		if arg == "" {
			c.printf("pick needs a file path\n")
			return false
		}
		f, err := upload.OpenFile(arg)
		if err != nil {
			log.WithError(err).WithField("path", arg).Warn("cannot open file")
			c.printf("cannot open %s\n", arg)
			return false
		}
		c.upload.SelectFile(f)
	case "classify":
		c.async(func() { c.upload.Submit(ctx) })
	case "help":
		c.printf("%s", helpText)
	case "quit", "exit":
		return true
	default:
		c.printf("unknown command %q, type help\n", cmd)
	}
	return false
}

// Wait blocks until every request started by the console has settled.
func (c *Console) Wait() {
	c.wg.Wait()
}

func (c *Console) async(fn func()) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		fn()
	}()
}

func (c *Console) printf(format string, args ...any) {
	c.print(func(w io.Writer) { fmt.Fprintf(w, format, args...) })
}

func (c *Console) print(render func(io.Writer)) {
	c.outMu.Lock()
	defer c.outMu.Unlock()
	render(c.out)
}
