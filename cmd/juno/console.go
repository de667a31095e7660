package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"juno/rules"
)

const consoleBanner = `==========================================
   juno - OpenRA Strategic Commander
==========================================
Commands:
  start      - Start the commander
  stop       - Stop the commander
  cmd <msg>  - Set the standing directive
  status     - Show squad and agent status
  eco start  - Enable the economy sidekick
  eco stop   - Disable the economy sidekick
  tac start  - Enable the tactical overlay
  tac stop   - Disable the tactical overlay
  tac show   - Show overlay output
  tac hide   - Hide overlay output
  doctrine <default|hold>
             - Swap the offline fallback posture
  exit       - Quit
==========================================`

// runConsole drives the interactive console until exit or EOF. The
// commander is stopped before returning.
func runConsole(c *Commander, in io.Reader, out io.Writer) {
	fmt.Fprintln(out, consoleBanner)
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "juno> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !dispatch(c, out, line) {
			break
		}
	}
	if c.Running() {
		fmt.Fprintln(out, "Stopping commander...")
		c.Stop()
	}
}

// dispatch executes one console line. It returns false when the console
// should exit.
func dispatch(c *Commander, out io.Writer, line string) bool {
	cmd, args, _ := strings.Cut(line, " ")
	args = strings.TrimSpace(args)

	switch strings.ToLower(cmd) {
	case "exit", "quit":
		return false

	case "start":
		if err := c.Start(); err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			break
		}
		fmt.Fprintln(out, "Commander started.")

	case "stop":
		if !c.Running() {
			fmt.Fprintln(out, "Commander is not running.")
			break
		}
		c.Stop()
		fmt.Fprintln(out, "Commander stopped.")

	case "cmd":
		if args == "" {
			fmt.Fprintln(out, "Usage: cmd <message>")
			break
		}
		if err := os.WriteFile(c.CommandFile(), []byte(args), 0o644); err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			break
		}
		fmt.Fprintf(out, "Command written to %s: %s\n", c.CommandFile(), args)

	case "status":
		companies, orders := c.Status()
		if len(companies) == 0 {
			fmt.Fprintln(out, "No active companies.")
		}
		for _, co := range companies {
			where := "unknown"
			if co.Location != nil {
				where = fmt.Sprintf("(%d,%d)", co.Location.X, co.Location.Y)
			}
			fmt.Fprintf(out, "Company %s: %d units, power %.1f, weight %.1f, at %s, order %s\n",
				co.ID, co.Count, co.Power, co.Weight, where, orderOrIdle(orders, co.ID))
		}
		eco := "INACTIVE"
		if c.Economy().Active() {
			eco = "ACTIVE"
		}
		fmt.Fprintf(out, "Economy: %s\n", eco)

	case "eco":
		switch args {
		case "start":
			c.Economy().SetActive(true)
			fmt.Fprintln(out, "Economy sidekick ENABLED.")
		case "stop":
			c.Economy().SetActive(false)
			fmt.Fprintln(out, "Economy sidekick DISABLED.")
		default:
			fmt.Fprintln(out, "Usage: eco <start|stop>")
		}

	case "tac":
		switch args {
		case "start":
			c.Overlay().Enable()
			fmt.Fprintln(out, "Tactical overlay ENABLED.")
		case "stop":
			c.Overlay().Disable()
			fmt.Fprintln(out, "Tactical overlay DISABLED.")
		case "show":
			c.Overlay().Show()
			fmt.Fprintln(out, "Tactical overlay output SHOWN.")
		case "hide":
			c.Overlay().Hide()
			fmt.Fprintln(out, "Tactical overlay output HIDDEN.")
		default:
			fmt.Fprintln(out, "Usage: tac <start|stop|show|hide>")
		}

	case "doctrine":
		var rs []*rules.Rule
		switch args {
		case "default":
			rs = rules.FallbackDoctrine()
		case "hold":
			rs = rules.HoldDoctrine()
		default:
			fmt.Fprintln(out, "Usage: doctrine <default|hold>")
			return true
		}
		if err := c.Strategist().SetDoctrine(rs); err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			break
		}
		fmt.Fprintf(out, "Fallback doctrine set to %s.\n", strings.ToUpper(args))

	default:
		fmt.Fprintf(out, "Unknown command: %s\n", cmd)
	}
	return true
}

func orderOrIdle(orders map[string]string, id string) string {
	if st, ok := orders[id]; ok && st != "" {
		return st
	}
	return "idle"
}
