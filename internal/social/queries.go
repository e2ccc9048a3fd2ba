package social

// Cypher statements for the follow graph. Every statement is parameterized;
// SKIP/LIMIT arrive as integer parameters.

const (
	upsertUserQuery = `
		MERGE (u:User {id: $id})
		SET u.displayName = $displayName
	`

	followQuery = `
		MERGE (a:User {id: $follower})
		MERGE (b:User {id: $followee})
		MERGE (a)-[r:FOLLOWS]->(b)
		ON CREATE SET r.followedAt = datetime($now)
		RETURN r.followedAt AS followedAt
	`

	unfollowQuery = `
		MATCH (:User {id: $follower})-[r:FOLLOWS]->(:User {id: $followee})
		DELETE r
	`

	followersCountQuery = `
		MATCH (:User)-[r:FOLLOWS]->(:User {id: $id})
		RETURN count(r) AS count
	`

	followingCountQuery = `
		MATCH (:User {id: $id})-[r:FOLLOWS]->(:User)
		RETURN count(r) AS count
	`

	listFollowersQuery = `
		MATCH (f:User)-[r:FOLLOWS]->(:User {id: $id})
		RETURN f.id AS id, f.displayName AS displayName, r.followedAt AS followedAt
		ORDER BY r.followedAt DESC
		SKIP $offset LIMIT $limit
	`

	listFollowingQuery = `
		MATCH (:User {id: $id})-[r:FOLLOWS]->(f:User)
		RETURN f.id AS id, f.displayName AS displayName, r.followedAt AS followedAt
		ORDER BY r.followedAt DESC
		SKIP $offset LIMIT $limit
	`

	isFollowingQuery = `
		MATCH (:User {id: $a})-[r:FOLLOWS]->(:User {id: $b})
		RETURN count(r) > 0 AS following
	`

	// Two-hop traversal: users followed by users $id follows, excluding $id
	// and anyone $id already follows, scored by distinct connectors.
	friendsOfFriendsQuery = `
		MATCH (u:User {id: $id})-[:FOLLOWS]->(m:User)-[:FOLLOWS]->(fof:User)
		WHERE fof.id <> $id AND NOT (u)-[:FOLLOWS]->(fof)
		RETURN fof.id AS id, fof.displayName AS displayName,
		       count(DISTINCT m) AS connectors
		ORDER BY connectors DESC, id ASC
		LIMIT $limit
	`

	socialDistanceQuery = `
		MATCH (a:User {id: $a}), (b:User {id: $b}),
		      p = shortestPath((a)-[:FOLLOWS*1..3]->(b))
		RETURN length(p) AS distance
	`

	// Creators followed by people the user follows, scored by how many of
	// the user's follows endorse them.
	creatorsFollowedByFriendsQuery = `
		MATCH (u:User {id: $id})-[:FOLLOWS]->(f:User)-[:FOLLOWS]->(c:User)
		WHERE c.id <> $id AND NOT (u)-[:FOLLOWS]->(c)
		RETURN c.id AS id, count(DISTINCT f) AS score
		ORDER BY score DESC, id ASC
		LIMIT $limit
	`

	// Creators followed by second-degree peers (accounts that share a
	// followee with the user), scored by distinct peers.
	creatorsPopularInNetworkQuery = `
		MATCH (u:User {id: $id})-[:FOLLOWS]->(:User)<-[:FOLLOWS]-(peer:User)-[:FOLLOWS]->(c:User)
		WHERE c.id <> $id AND peer.id <> $id AND NOT (u)-[:FOLLOWS]->(c)
		RETURN c.id AS id, count(DISTINCT peer) AS score
		ORDER BY score DESC, id ASC
		LIMIT $limit
	`
)
