package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/junaidrashid-git/tomato-client/app"
	"github.com/junaidrashid-git/tomato-client/auth"
	"github.com/junaidrashid-git/tomato-client/config"
	"github.com/junaidrashid-git/tomato-client/export"
	"github.com/junaidrashid-git/tomato-client/feed"
	"github.com/junaidrashid-git/tomato-client/localdata"
	"github.com/junaidrashid-git/tomato-client/models"
	cartStore "github.com/junaidrashid-git/tomato-client/stores/cart"
	orderStore "github.com/junaidrashid-git/tomato-client/stores/order"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Config error: %v", err)
	}

	a, err := app.New(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to build client: %v", err)
	}
	if err := a.API.LoadCookies(cfg.CookieFile()); err != nil {
		log.Printf("⚠️ Could not load session cookies: %v", err)
	}

	ctx := context.Background()

	// One-shot session restore before any routing decision. A redirect back
	// from the payment or OAuth provider lands here like any cold start.
	a.Start(ctx)

	if err := run(ctx, cfg, a, os.Args[1], os.Args[2:]); err != nil {
		saveCookies(a, cfg)
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	saveCookies(a, cfg)
}

func saveCookies(a *app.App, cfg config.Config) {
	if err := a.API.SaveCookies(cfg.CookieFile()); err != nil {
		log.Printf("⚠️ Could not save session cookies: %v", err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `tomato-client - terminal client for the Tomato food-ordering platform

Usage:
  tomato-client register -name NAME -email EMAIL -password PASSWORD
  tomato-client login -email EMAIL -password PASSWORD
  tomato-client logout
  tomato-client whoami
  tomato-client restaurants
  tomato-client restaurant ID
  tomato-client menu RESTAURANT_ID
  tomato-client cart [show]
  tomato-client cart add -restaurant ID -item ID [-qty N]
  tomato-client cart update -item ID -qty N
  tomato-client cart remove -item ID
  tomato-client cart clear
  tomato-client order place [-street S -city C -pincode P ...]
  tomato-client order my
  tomato-client order track ID
  tomato-client checkout
  tomato-client confirm [-street S -city C -pincode P ...]
  tomato-client admin orders
  tomato-client admin status -order ID -status STATUS
  tomato-client admin export -out FILE
  tomato-client admin watch`)
}

func run(ctx context.Context, cfg config.Config, a *app.App, cmd string, args []string) error {
	switch cmd {
	case "register":
		return cmdRegister(ctx, a, args)
	case "login":
		return cmdLogin(ctx, a, args)
	case "logout":
		return cmdLogout(ctx, a)
	case "whoami":
		return cmdWhoami(a)
	case "restaurants":
		return cmdRestaurants(ctx, a)
	case "restaurant":
		return cmdRestaurant(ctx, a, args)
	case "menu":
		return cmdMenu(ctx, a, args)
	case "cart":
		return cmdCart(ctx, a, args)
	case "order":
		return cmdOrder(ctx, cfg, a, args)
	case "checkout":
		return cmdCheckout(ctx, a)
	case "confirm":
		return cmdConfirm(ctx, cfg, a, args)
	case "admin":
		return cmdAdmin(ctx, cfg, a, args)
	case "help", "-h", "--help":
		usage()
		return nil
	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func cmdRegister(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	name := fs.String("name", "", "full name")
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	fs.Parse(args)

	if err := a.Session.Register(ctx, *name, *email, *password); err != nil {
		return fmt.Errorf("%s", a.Session.State().Err)
	}
	st := a.Session.State()
	log.Printf("✅ Registered and signed in as %s <%s>", st.User.Name, st.User.Email)
	return nil
}

func cmdLogin(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	fs.Parse(args)

	if err := a.Session.Login(ctx, *email, *password); err != nil {
		return fmt.Errorf("%s", a.Session.State().Err)
	}
	st := a.Session.State()
	log.Printf("✅ Signed in as %s <%s>", st.User.Name, st.User.Email)
	return nil
}

func cmdLogout(ctx context.Context, a *app.App) error {
	if err := a.Logout(ctx); err != nil {
		return fmt.Errorf("%s", a.Session.State().Err)
	}
	log.Println("✅ Signed out")
	return nil
}

func cmdWhoami(a *app.App) error {
	st := a.Session.State()
	if !st.IsAuthenticated {
		fmt.Println("not signed in")
		return nil
	}
	fmt.Printf("%s <%s> role=%s\n", st.User.Name, st.User.Email, st.User.Role)

	if claims, err := auth.PeekClaims(a.API.Cookie(auth.SessionCookie)); err == nil && !claims.ExpiresAt.IsZero() {
		fmt.Printf("session expires %s\n", claims.ExpiresAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

func cmdRestaurants(ctx context.Context, a *app.App) error {
	if err := a.Restaurants.FetchAll(ctx); err != nil {
		return fmt.Errorf("%s", a.Restaurants.State().ListErr)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCUISINE\tOPEN")
	for _, r := range a.Restaurants.State().List {
		fmt.Fprintf(w, "%s\t%s\t%s\t%v\n", r.ID, r.Name, r.Cuisine, r.IsOpen)
	}
	return w.Flush()
}

func cmdRestaurant(ctx context.Context, a *app.App, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: restaurant ID")
	}
	if err := a.Restaurants.FetchDetails(ctx, args[0]); err != nil {
		return fmt.Errorf("%s", a.Restaurants.State().DetailErr)
	}
	r := a.Restaurants.State().Selected
	fmt.Printf("%s\n  cuisine: %s\n  address: %s\n  rating: %.1f\n  open: %v\n",
		r.Name, r.Cuisine, r.Address, r.Rating, r.IsOpen)
	return nil
}

func cmdMenu(ctx context.Context, a *app.App, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: menu RESTAURANT_ID")
	}
	if err := a.Restaurants.FetchMenu(ctx, args[0]); err != nil {
		return fmt.Errorf("%s", a.Restaurants.State().MenuErr)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tITEM\tPRICE\tAVAILABLE")
	for _, item := range a.Restaurants.State().MenuItems {
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%v\n", item.ID, item.Name, item.Price, item.Available)
	}
	return w.Flush()
}

func cmdCart(ctx context.Context, a *app.App, args []string) error {
	sub := "show"
	if len(args) > 0 {
		sub = args[0]
		args = args[1:]
	}

	var err error
	switch sub {
	case "show":
		err = a.Cart.Fetch(ctx)
	case "add":
		fs := flag.NewFlagSet("cart add", flag.ExitOnError)
		restaurant := fs.String("restaurant", "", "restaurant id")
		item := fs.String("item", "", "menu item id")
		qty := fs.Int("qty", 1, "quantity")
		fs.Parse(args)
		err = a.Cart.Add(ctx, *restaurant, *item, *qty)
	case "update":
		fs := flag.NewFlagSet("cart update", flag.ExitOnError)
		item := fs.String("item", "", "cart item id")
		qty := fs.Int("qty", 1, "quantity")
		fs.Parse(args)
		err = a.Cart.UpdateItem(ctx, *item, *qty)
	case "remove":
		fs := flag.NewFlagSet("cart remove", flag.ExitOnError)
		item := fs.String("item", "", "cart item id")
		fs.Parse(args)
		err = a.Cart.Remove(ctx, *item)
	case "clear":
		err = a.Cart.Clear(ctx)
	default:
		return fmt.Errorf("unknown cart command %q", sub)
	}

	st := a.Cart.State()
	if err != nil {
		return fmt.Errorf("%s", st.Err)
	}
	printCart(st.Cart)
	return nil
}

func printCart(cart *models.Cart) {
	if cart.Empty() {
		fmt.Println(cartStore.Describe(cart))
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tITEM\tQTY\tPRICE")
	for _, item := range cart.Items {
		fmt.Fprintf(w, "%s\t%s\t%d\t%.2f\n", item.ID, item.Name, item.Quantity, item.Price)
	}
	w.Flush()
	fmt.Printf("subtotal: %.2f\n", cart.Subtotal)
}

func addressFlags(fs *flag.FlagSet) *models.DeliveryAddress {
	addr := &models.DeliveryAddress{}
	fs.StringVar(&addr.Label, "label", "Home", "address label")
	fs.StringVar(&addr.Street, "street", "", "street (required)")
	fs.StringVar(&addr.City, "city", "", "city (required)")
	fs.StringVar(&addr.State, "state", "", "state")
	fs.StringVar(&addr.Pincode, "pincode", "", "pincode (required)")
	fs.StringVar(&addr.Landmark, "landmark", "", "landmark")
	return addr
}

// resolveAddress fills missing mandatory fields from the locally saved
// address, then persists the result for the next checkout.
func resolveAddress(cfg config.Config, addr *models.DeliveryAddress) error {
	local, err := localdata.Open(cfg.CacheFile())
	if err != nil {
		local = nil
	}

	if local != nil && !addr.Complete() {
		if saved, err := local.LastAddress(); err == nil && saved != nil {
			if addr.Street == "" {
				addr.Street = saved.Street
			}
			if addr.City == "" {
				addr.City = saved.City
			}
			if addr.Pincode == "" {
				addr.Pincode = saved.Pincode
			}
			if addr.State == "" {
				addr.State = saved.State
			}
			if addr.Landmark == "" {
				addr.Landmark = saved.Landmark
			}
		}
	}

	if !addr.Complete() {
		return fmt.Errorf("street, city and pincode are required")
	}
	if local != nil {
		_ = local.SaveAddress(*addr)
	}
	return nil
}

func cmdOrder(ctx context.Context, cfg config.Config, a *app.App, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: order place|my|track")
	}
	sub := args[0]
	args = args[1:]

	switch sub {
	case "place":
		fs := flag.NewFlagSet("order place", flag.ExitOnError)
		addr := addressFlags(fs)
		fs.Parse(args)

		// Checkout precondition: the cart must be non-empty. The stores do
		// not enforce it; the shell checks before dispatch.
		if err := a.Cart.Fetch(ctx); err != nil {
			return fmt.Errorf("%s", a.Cart.State().Err)
		}
		if a.Cart.State().Cart.Empty() {
			return fmt.Errorf("cart is empty; add some items first")
		}
		if err := resolveAddress(cfg, addr); err != nil {
			return err
		}

		order, err := a.Orders.Create(ctx, *addr, models.PaymentMethodCOD)
		if err != nil {
			return fmt.Errorf("%s", a.Orders.State().CreateErr)
		}
		a.Orders.ClearLastCreated()
		log.Printf("✅ Order placed: %s (total %.2f)", order.ID, order.TotalAmount)
		return nil

	case "my":
		err := a.Orders.FetchMy(ctx)
		st := a.Orders.State()
		if err != nil {
			// Fall back to the offline copy when the backend is unreachable.
			if session := a.Session.State(); session.User != nil {
				if local, lerr := localdata.Open(cfg.CacheFile()); lerr == nil {
					if cached, cerr := local.CachedOrders(session.User.ID); cerr == nil && len(cached) > 0 {
						fmt.Println("(offline copy)")
						printOrders(cached)
						return nil
					}
				}
			}
			return fmt.Errorf("%s", st.MyOrdersErr)
		}

		if session := a.Session.State(); session.User != nil {
			if local, lerr := localdata.Open(cfg.CacheFile()); lerr == nil {
				_ = local.CacheOrders(session.User.ID, st.MyOrders)
			}
		}
		printOrders(st.MyOrders)
		return nil

	case "track":
		if len(args) < 1 {
			return fmt.Errorf("usage: order track ID")
		}
		if err := a.Orders.FetchByID(ctx, args[0]); err != nil {
			return fmt.Errorf("%s", a.Orders.State().SelectedErr)
		}
		printTracking(a.Orders.State().Selected)
		return nil

	default:
		return fmt.Errorf("unknown order command %q", sub)
	}
}

func printOrders(orders []models.Order) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tPAYMENT\tTOTAL\tPLACED")
	for _, o := range orders {
		fmt.Fprintf(w, "%s\t%s\t%s/%s\t%.2f\t%s\n",
			o.ID, o.Status, o.PaymentInfo.Method, o.PaymentInfo.Status,
			o.TotalAmount, o.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	w.Flush()
}

func printTracking(order *models.Order) {
	fmt.Printf("Order %s - placed %s, total %.2f\n",
		order.ID, order.CreatedAt.Local().Format("2006-01-02 15:04"), order.TotalAmount)

	if order.IsCancelled() {
		fmt.Println("This order has been CANCELLED.")
		return
	}
	for _, step := range orderStore.TrackingSteps(order) {
		mark := " "
		if step.Reached {
			mark = "x"
		}
		fmt.Printf("  [%s] %s", mark, step.Label)
		if step.Current {
			fmt.Print("  <- current")
		}
		fmt.Println()
	}
}

func cmdCheckout(ctx context.Context, a *app.App) error {
	if err := a.Cart.Fetch(ctx); err != nil {
		return fmt.Errorf("%s", a.Cart.State().Err)
	}
	if a.Cart.State().Cart.Empty() {
		return fmt.Errorf("cart is empty; add some items first")
	}

	url, err := a.Payments.StartCheckout(ctx)
	if err != nil {
		return fmt.Errorf("%s", a.Payments.State().StripeErr)
	}

	// Phase 1 of the handoff: the process leaves for the provider. Print the
	// URL for the user to open; `confirm` is the re-entry point afterwards.
	fmt.Println("Open this URL to complete the payment:")
	fmt.Println("  " + url)
	fmt.Println("Then run: tomato-client confirm -street ... -city ... -pincode ...")
	return nil
}

func cmdConfirm(ctx context.Context, cfg config.Config, a *app.App, args []string) error {
	fs := flag.NewFlagSet("confirm", flag.ExitOnError)
	addr := addressFlags(fs)
	fs.Parse(args)

	if err := resolveAddress(cfg, addr); err != nil {
		return err
	}

	order, err := a.ConfirmOrder(ctx, *addr)
	if err != nil {
		return fmt.Errorf("%s", a.Payments.State().ConfirmErr)
	}
	log.Printf("✅ Payment confirmed, order placed: %s (total %.2f)", order.ID, order.TotalAmount)
	return nil
}

func cmdAdmin(ctx context.Context, cfg config.Config, a *app.App, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: admin orders|status|export|watch")
	}
	sub := args[0]
	args = args[1:]

	switch sub {
	case "orders":
		if err := a.Orders.FetchAllAdmin(ctx); err != nil {
			return fmt.Errorf("%s", a.Orders.State().AdminOrdersErr)
		}
		printOrders(a.Orders.State().AdminOrders)
		return nil

	case "status":
		fs := flag.NewFlagSet("admin status", flag.ExitOnError)
		orderID := fs.String("order", "", "order id")
		status := fs.String("status", "", "new status")
		fs.Parse(args)

		newStatus := models.OrderStatus(strings.ToUpper(*status))
		if !models.ValidOrderStatus(newStatus) {
			return fmt.Errorf("invalid status %q", *status)
		}
		if err := a.Orders.UpdateStatusAdmin(ctx, *orderID, newStatus); err != nil {
			return fmt.Errorf("%s", a.Orders.State().UpdateStatusErr)
		}
		log.Printf("✅ Order %s -> %s", *orderID, newStatus)
		return nil

	case "export":
		fs := flag.NewFlagSet("admin export", flag.ExitOnError)
		out := fs.String("out", "orders.xlsx", "output file")
		fs.Parse(args)

		if err := a.Orders.FetchAllAdmin(ctx); err != nil {
			return fmt.Errorf("%s", a.Orders.State().AdminOrdersErr)
		}

		f, err := os.Create(*out)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := export.OrdersToXLSX(a.Orders.State().AdminOrders, f); err != nil {
			return err
		}
		log.Printf("✅ Exported %d orders to %s", len(a.Orders.State().AdminOrders), *out)
		return nil

	case "watch":
		if err := a.Orders.FetchAllAdmin(ctx); err != nil {
			return fmt.Errorf("%s", a.Orders.State().AdminOrdersErr)
		}
		printOrders(a.Orders.State().AdminOrders)

		a.Orders.Subscribe(func() {
			fmt.Println("--- order update ---")
			printOrders(a.Orders.State().AdminOrders)
		})

		log.Printf("👀 Watching order feed at %s (Ctrl+C to stop)", cfg.WSURL)
		return feed.New(cfg.WSURL, a.API.Jar(), a.Orders).Run(ctx)

	default:
		return fmt.Errorf("unknown admin command %q", sub)
	}
}
