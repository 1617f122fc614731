package hub

import (
	"fmt"
	"os/exec"

	"github.com/kestrelworks/lobbyhub"
)

// launchGame fork-execs the game binary the way original_source/server/
// main.cpp's fork+execlp does, but reaps the child with a goroutine
// blocked on Cmd.Wait instead of a SIGCHLD handler -- the idiomatic Go
// equivalent of a non-blocking waitpid loop. The server does not track
// the child beyond this; finish_game is driven entirely by the host
// client (spec.md §4.5.5).
func launchGame(artifactPath string, gamePort int) {
	cmd := exec.Command("python3", artifactPath, "--server", fmt.Sprint(gamePort))

	if err := cmd.Start(); err != nil {
		lobbyhub.Log.WithError(err).WithField("artifact", artifactPath).Error("failed to launch game subprocess")
		return
	}

	go func() {
		if err := cmd.Wait(); err != nil {
			lobbyhub.Log.WithError(err).WithField("artifact", artifactPath).Debug("game subprocess exited")
		}
	}()
}
