package main

import (
	"fmt"
	"io/fs"
	"log"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/glowkit-labs/arxcontrol/arx"
	"github.com/glowkit-labs/arxcontrol/native"
)

const helloIndex = `<html>
<head>
    <meta name="viewport"
          content="width=device-width, initial-scale=1.0, maximum-scale=1, target-densityDpi=device-dpi, user-scalable=no"/>
    <link rel="stylesheet" type="text/css" href="style.css">
</head>
<body>
<h2 id="greeting">Hello, world!</h2>
</body>
</html>
`

const helloStyle = `body { background-color: cornflowerblue; }`

func main() {
	// Initialize Viper to read from environment variables
	viper.AutomaticEnv()
	viper.SetDefault("ARX_APP_ID", "com.glowkit.arxdemo")
	viper.SetDefault("ARX_APP_NAME", "Arx Demo")
	viper.SetDefault("ARX_INDEX", "index.html")
	viper.SetDefault("ARX_WATCH", true)

	appletDir := viper.GetString("ARX_APPLET_DIR")
	index := viper.GetString("ARX_INDEX")

	var opts []arx.Option
	if path := viper.GetString("ARX_DLL_PATH"); path != "" {
		log.Printf("Using arx control library: %s", path)
		opts = append(opts, arx.WithLibraryPath(path))
	}

	ctl, err := arx.New(
		viper.GetString("ARX_APP_ID"),
		viper.GetString("ARX_APP_NAME"),
		native.EventHandlerFunc(logEvent),
		opts...)
	if err != nil {
		panic(err)
	}

	err = ctl.Session(func(c *arx.Control) error {
		if appletDir == "" {
			if err := pushHello(c); err != nil {
				return err
			}
		} else if err := pushDir(c, appletDir); err != nil {
			return err
		}

		if ok, err := c.SetIndex(index); err != nil {
			return err
		} else if !ok {
			return fmt.Errorf("failed to set index %s: %s", index, c.LastError())
		}

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

		if appletDir != "" && viper.GetBool("ARX_WATCH") {
			return watchApplet(c, appletDir, stop)
		}

		log.Println("Applet pushed, press Ctrl+C to exit")
		<-stop
		return nil
	})
	if err != nil {
		panic(err)
	}
}

// logEvent handles device events. It runs on a thread owned by the
// native library.
func logEvent(ev native.Event) {
	switch ev.Type {
	case native.EventTapOnTag:
		log.Printf("Tag tapped: %s", ev.Arg)
	case native.EventMobileDeviceArrival:
		log.Printf("Device connected: %s", native.DeviceType(ev.Value))
	case native.EventMobileDeviceRemoval:
		log.Printf("Device disconnected: %s", native.DeviceType(ev.Value))
	default:
		log.Printf("Event %s value=%d arg=%q", ev.Type, ev.Value, ev.Arg)
	}
}

// pushHello sends the built-in hello-world applet.
func pushHello(c *arx.Control) error {
	if ok, err := c.AddStringAs(helloIndex, "index.html", "text/html"); err != nil || !ok {
		return pushFailure("index.html", c, err)
	}
	if ok, err := c.AddStringAs(helloStyle, "style.css", "text/css"); err != nil || !ok {
		return pushFailure("style.css", c, err)
	}
	return nil
}

// pushDir sends every regular file under dir, referenced by its
// slash-separated path relative to dir.
func pushDir(c *arx.Control, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		return pushFile(c, dir, path)
	})
}

func pushFile(c *arx.Control, dir, path string) error {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return err
	}
	name := filepath.ToSlash(rel)

	ok, err := c.AddFileAs(path, name, mime.TypeByExtension(filepath.Ext(path)))
	if err != nil || !ok {
		return pushFailure(name, c, err)
	}

	log.Printf("Pushed %s", name)
	return nil
}

func pushFailure(name string, c *arx.Control, err error) error {
	if err != nil {
		return err
	}
	return fmt.Errorf("failed to push %s: %s", name, c.LastError())
}

// watchApplet re-pushes files that change under dir until stop fires.
func watchApplet(c *arx.Control, dir string, stop <-chan os.Signal) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	log.Printf("Watching %s for changes, press Ctrl+C to exit", dir)

	for {
		select {
		case ev := <-watcher.Events:
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := pushFile(c, dir, ev.Name); err != nil {
				return err
			}
		case err := <-watcher.Errors:
			log.Printf("Watcher error: %v", err)
		case <-stop:
			return nil
		}
	}
}
