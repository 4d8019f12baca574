// Bookshelf - Collaborative Filtering Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookshelf

/*
Package main is the entry point for the Bookshelf server.

Bookshelf answers "readers who liked this book also liked" queries from a
book-crossing style dataset: three delimited tables (books, ratings,
readers) are joined, filtered and turned into a user-by-book rating matrix,
and recommendations come from the nearest neighbours of the reader who rated
the queried book highest.

# Application Architecture

	bookshelf
	├── build-layer
	│   └── build-service (startup build, periodic rebuilds)
	├── messaging-layer
	│   ├── nats-server (optional embedded NATS)
	│   └── rebuild-subscriber (rebuild requests from the event bus)
	└── api-layer
	    ├── http-server
	    └── cache-sweeper (if RECOMMEND_CACHE_SIZE > 0)

Component initialization order:

 1. Configuration: koanf v2 from defaults, config.yaml and environment
 2. Logging: zerolog, bridged to slog for the supervisor
 3. Source loader: CSV or DuckDB reader, remote downloads behind a breaker
 4. Engine: snapshot builds and queries
 5. Events (optional): embedded NATS, Watermill bus, snapshot notifications
 6. HTTP: chi router with JWT-guarded admin routes
 7. Supervisor tree: runs everything until SIGINT or SIGTERM

# Admin Tokens

Admin routes need JWT_SECRET. Mint a token without starting the server:

	./bookshelf -issue-token alice

# Example Usage

	export BOOKS_PATH=data/Books.csv
	export RATINGS_PATH=data/Book-Ratings.csv
	export USERS_PATH=data/Users.csv
	./bookshelf

	curl 'http://localhost:8080/api/v1/recommendations/by-title?book_title=dune&top_n=5'
*/
package main
