// Package cli wires the interactive chat client: sign-in, group
// selection, endpoint binding and the chat session itself.
package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"peerchat/internal/auth"
	"peerchat/internal/common"
	"peerchat/internal/config"
	"peerchat/internal/directory"
	"peerchat/internal/gossip"
	"peerchat/internal/logging"
	"peerchat/internal/models"
	"peerchat/internal/repositories/groups"
	"peerchat/internal/repositories/users"
	"peerchat/internal/session"
	"peerchat/internal/store"
)

type App struct {
	cfg  *config.Config
	log  logging.Logger
	in   *bufio.Reader
	out  io.Writer
	db   *sql.DB
	auth *auth.Service
	dir  *directory.Directory
}

// NewApp opens the database, applies migrations and assembles the
// services. The returned App owns the database handle; call Close when
// done.
func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger, in io.Reader, out io.Writer) (*App, error) {
	db, err := store.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	return &App{
		cfg:  cfg,
		log:  log,
		in:   bufio.NewReader(in),
		out:  out,
		db:   db,
		auth: auth.NewService(users.NewSQLRepository(db)),
		dir:  directory.New(groups.NewSQLRepository(db)),
	}, nil
}

func (a *App) Close() error {
	return a.db.Close()
}

// Run drives one full client session: authenticate, bind the network
// endpoint with the user's identity seed, pick a group, subscribe and
// chat until the operator quits or the context ends.
func (a *App) Run(ctx context.Context) error {
	user, seed, err := a.signIn(ctx)
	if err != nil {
		return err
	}

	ep, err := gossip.Bind(ctx, a.cfg.ListenAddr, seed)
	if err != nil {
		return fmt.Errorf("binding endpoint: %w", err)
	}
	defer ep.Close()

	fmt.Fprintf(a.out, "> our endpoint id: %s\n", ep.ID())

	topic, bootstrap, err := a.chooseGroup(ctx, user, ep.Addr())
	if err != nil {
		return err
	}

	if len(bootstrap) == 0 {
		fmt.Fprintln(a.out, "> waiting for peers to join us...")
	} else {
		fmt.Fprintf(a.out, "> trying to connect to %d peer(s)...\n", len(bootstrap))
	}

	tc, err := gossip.New(ep, a.log).Subscribe(ctx, topic, bootstrap)
	if err != nil {
		return fmt.Errorf("subscribing to topic: %w", err)
	}
	defer tc.Close()

	fmt.Fprintln(a.out, "> connected!")
	fmt.Fprintln(a.out, "> type a message and hit enter to broadcast...")

	lines := StartLineReader(a.in)
	sess := session.New(tc, ep.ID(), user.Name, a.out, a.log)
	return sess.Run(ctx, lines)
}

// signIn runs the authentication state machine: sign in or register, a
// wrong password offers retry or register, an unknown phone number falls
// through to registration. It loops until an account is established.
func (a *App) signIn(ctx context.Context) (*models.User, []byte, error) {
	choice, err := Select(a.in, "What would you like to do?", []string{"Sign in", "Register"}, a.out)
	if err != nil {
		return nil, nil, err
	}
	if choice == 1 {
		return a.register(ctx)
	}

	for {
		phone, err := GetPhoneNo(a.in, "Enter your phone number", a.out)
		if err != nil {
			return nil, nil, err
		}
		password, err := GetPassword("Enter your password", a.out)
		if err != nil {
			return nil, nil, err
		}

		user, seed, err := a.auth.Authenticate(ctx, phone, password)
		switch {
		case err == nil:
			fmt.Fprintf(a.out, "Welcome back, %s!\n", user.Name)
			return user, seed, nil
		case errors.Is(err, common.ErrNoSuchUser):
			fmt.Fprintln(a.out, "No user found with that phone number.")
			return a.register(ctx)
		case errors.Is(err, common.ErrBadPassword):
			next, err := Select(a.in, "Wrong password.", []string{"Retry", "Register"}, a.out)
			if err != nil {
				return nil, nil, err
			}
			if next == 1 {
				return a.register(ctx)
			}
		default:
			return nil, nil, err
		}
	}
}

func (a *App) register(ctx context.Context) (*models.User, []byte, error) {
	name, err := GetSimpleText(a.in, "Enter your display name", a.out)
	if err != nil {
		return nil, nil, err
	}
	phone, err := GetPhoneNo(a.in, "Enter your phone number", a.out)
	if err != nil {
		return nil, nil, err
	}
	password, err := GetPassword("Choose a password", a.out)
	if err != nil {
		return nil, nil, err
	}

	user, seed, err := a.auth.Register(ctx, name, phone, password)
	if err != nil {
		return nil, nil, fmt.Errorf("registration failed: %w", err)
	}
	fmt.Fprintf(a.out, "Welcome, %s!\n", user.Name)
	return user, seed, nil
}

// chooseGroup either creates a new group (printing the shareable ticket)
// or resolves an existing one by name. Joining starts with no known
// peers; the mesh is found through transport-level discovery.
func (a *App) chooseGroup(ctx context.Context, user *models.User, self gossip.AddrInfo) (gossip.Topic, []gossip.AddrInfo, error) {
	choice, err := Select(a.in, "Open a new group or join an existing one?", []string{"Open", "Join"}, a.out)
	if err != nil {
		return gossip.Topic{}, nil, err
	}

	name, err := GetSimpleText(a.in, "Enter the group name", a.out)
	if err != nil {
		return gossip.Topic{}, nil, err
	}

	if choice == 0 {
		tk, err := a.dir.Create(ctx, name, user, self)
		if err != nil {
			return gossip.Topic{}, nil, fmt.Errorf("creating group: %w", err)
		}
		fmt.Fprintf(a.out, "> opening chat room for topic %s\n", tk.Topic)
		fmt.Fprintf(a.out, "> ticket to join us: %s\n", tk)
		return tk.Topic, nil, nil
	}

	topic, err := a.dir.Resolve(ctx, name, func(owners []string) (string, error) {
		i, err := Select(a.in, "Several groups share that name. Whose group?", owners, a.out)
		if err != nil {
			return "", err
		}
		return owners[i], nil
	})
	if err != nil {
		return gossip.Topic{}, nil, fmt.Errorf("joining group: %w", err)
	}
	return topic, nil, nil
}
