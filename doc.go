// Package tutorbook embeds the tutorbook user search pipeline in a Go
// program, backed by Redis with the JSON and search modules.
//
// A Client keeps user profiles and organizations in Redis, answers filtered
// user searches, and projects every result through the caller's
// organization memberships, exactly like the HTTP service does.
//
//	client, _ := tutorbook.New(ctx,
//	    tutorbook.WithRedis("localhost:6379", ""),
//	    tutorbook.WithEnsureSchema(),
//	)
//	defer client.Close()
//
//	_ = client.IndexUser(ctx, &tutorbook.User{ID: "u1", Name: "Ada Lovelace"})
//	records, _ := client.ListUsers(ctx, tutorbook.SearchParams{
//	    Aspect:   tutorbook.Tutoring,
//	    Subjects: tutorbook.Options("Algebra"),
//	}, bearerToken)
package tutorbook
