package leasequery

import (
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/dhcp6kit/dhcp6d/codec"
)

// SQLStore is a SQLite-backed Store: WAL journal mode, IMMEDIATE write
// transactions, readers that never block writers.
type SQLStore struct {
	db     *sql.DB
	Filter OptionFilter
	Now    func() time.Time
}

// OpenSQLStore opens (creating if necessary) the SQLite database at path
// and ensures the schema exists. Each call opens its own *sql.DB handle.
func OpenSQLStore(path string) (*SQLStore, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate")
	if err != nil {
		return nil, err
	}
	s := &SQLStore{db: db, Now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) migrate() error {
	const schema = `
CREATE TABLE IF NOT EXISTS clients (
	id INTEGER PRIMARY KEY,
	client_id TEXT NOT NULL,
	link_address TEXT NOT NULL,
	options BLOB,
	last_interaction INTEGER NOT NULL,
	relay_data BLOB,
	UNIQUE(client_id, link_address)
);
CREATE TABLE IF NOT EXISTS addresses (
	client_fk INTEGER NOT NULL REFERENCES clients(id) ON DELETE CASCADE,
	address TEXT NOT NULL,
	preferred_lifetime_end INTEGER NOT NULL,
	valid_lifetime_end INTEGER NOT NULL,
	options BLOB,
	UNIQUE(client_fk, address)
);
CREATE TABLE IF NOT EXISTS prefixes (
	client_fk INTEGER NOT NULL REFERENCES clients(id) ON DELETE CASCADE,
	first_address TEXT NOT NULL,
	last_address TEXT NOT NULL,
	prefix_length INTEGER NOT NULL,
	preferred_lifetime_end INTEGER NOT NULL,
	valid_lifetime_end INTEGER NOT NULL,
	options BLOB,
	UNIQUE(client_fk, first_address, last_address)
);
CREATE TABLE IF NOT EXISTS remote_ids (
	client_fk INTEGER NOT NULL REFERENCES clients(id) ON DELETE CASCADE,
	remote_id TEXT NOT NULL,
	UNIQUE(client_fk, remote_id)
);
CREATE TABLE IF NOT EXISTS relay_ids (
	client_fk INTEGER NOT NULL REFERENCES clients(id) ON DELETE CASCADE,
	relay_id TEXT NOT NULL,
	UNIQUE(client_fk, relay_id)
);
CREATE INDEX IF NOT EXISTS addresses_address ON addresses(address);
CREATE INDEX IF NOT EXISTS prefixes_range ON prefixes(first_address, last_address);
`
	_, err := s.db.Exec(schema)
	return err
}

// Close releases the underlying database handle.
func (s *SQLStore) Close() error { return s.db.Close() }

// RememberLease implements Store using a single IMMEDIATE transaction so
// concurrent readers never block on it.
func (s *SQLStore) RememberLease(rec *ClientRecord) error {
	duid, err := duidHex(rec.ClientDUID)
	if err != nil {
		return err
	}
	link := canonicalIP(rec.LinkAddress)
	optsBlob, err := codec.EncodeOptions(rec.Options)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, a := range rec.Addresses {
		if err := evictAddressSQL(tx, duid, link, canonicalIP(a.Address)); err != nil {
			return err
		}
	}
	for _, p := range rec.Prefixes {
		if err := evictPrefixSQL(tx, duid, link, canonicalIP(p.First), canonicalIP(p.Last)); err != nil {
			return err
		}
	}

	res, err := tx.Exec(`INSERT INTO clients(client_id, link_address, options, last_interaction, relay_data)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(client_id, link_address) DO UPDATE SET
			options=excluded.options, last_interaction=excluded.last_interaction, relay_data=excluded.relay_data`,
		duid, link, optsBlob, rec.LastInteraction.Unix(), rec.RelayData)
	if err != nil {
		return err
	}
	clientID, err := res.LastInsertId()
	if err != nil {
		return err
	}
	if clientID == 0 {
		if err := tx.QueryRow(`SELECT id FROM clients WHERE client_id=? AND link_address=?`, duid, link).Scan(&clientID); err != nil {
			return err
		}
	}

	if err := replaceAddresses(tx, clientID, rec.Addresses); err != nil {
		return err
	}
	if err := replacePrefixes(tx, clientID, rec.Prefixes); err != nil {
		return err
	}
	if err := replaceRemoteIDs(tx, clientID, rec.RemoteIDs); err != nil {
		return err
	}
	if err := replaceRelayIDs(tx, clientID, rec.RelayIDs); err != nil {
		return err
	}

	return tx.Commit()
}

func evictAddressSQL(tx *sql.Tx, exceptClientDUID, exceptLink, address string) error {
	_, err := tx.Exec(`DELETE FROM addresses WHERE address=? AND client_fk NOT IN
		(SELECT id FROM clients WHERE client_id=? AND link_address=?)`, address, exceptClientDUID, exceptLink)
	return err
}

func evictPrefixSQL(tx *sql.Tx, exceptClientDUID, exceptLink, first, last string) error {
	_, err := tx.Exec(`DELETE FROM prefixes WHERE first_address=? AND last_address=? AND client_fk NOT IN
		(SELECT id FROM clients WHERE client_id=? AND link_address=?)`, first, last, exceptClientDUID, exceptLink)
	return err
}

func replaceAddresses(tx *sql.Tx, clientID int64, addrs []AddressLease) error {
	if _, err := tx.Exec(`DELETE FROM addresses WHERE client_fk=?`, clientID); err != nil {
		return err
	}
	for _, a := range addrs {
		blob, err := codec.EncodeOptions(a.Options)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(`INSERT INTO addresses(client_fk, address, preferred_lifetime_end, valid_lifetime_end, options)
			VALUES (?, ?, ?, ?, ?)`, clientID, canonicalIP(a.Address), a.PreferredLifetimeEnd.Unix(), a.ValidLifetimeEnd.Unix(), blob); err != nil {
			return err
		}
	}
	return nil
}

func replacePrefixes(tx *sql.Tx, clientID int64, prefixes []PrefixLease) error {
	if _, err := tx.Exec(`DELETE FROM prefixes WHERE client_fk=?`, clientID); err != nil {
		return err
	}
	for _, p := range prefixes {
		blob, err := codec.EncodeOptions(p.Options)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(`INSERT INTO prefixes(client_fk, first_address, last_address, prefix_length, preferred_lifetime_end, valid_lifetime_end, options)
			VALUES (?, ?, ?, ?, ?, ?, ?)`, clientID, canonicalIP(p.First), canonicalIP(p.Last), p.PrefixLength,
			p.PreferredLifetimeEnd.Unix(), p.ValidLifetimeEnd.Unix(), blob); err != nil {
			return err
		}
	}
	return nil
}

func replaceRemoteIDs(tx *sql.Tx, clientID int64, ids []RemoteID) error {
	if _, err := tx.Exec(`DELETE FROM remote_ids WHERE client_fk=?`, clientID); err != nil {
		return err
	}
	for _, rid := range ids {
		key := fmt.Sprintf("%d:%s", rid.Enterprise, hex.EncodeToString(rid.Opaque))
		if _, err := tx.Exec(`INSERT OR IGNORE INTO remote_ids(client_fk, remote_id) VALUES (?, ?)`, clientID, key); err != nil {
			return err
		}
	}
	return nil
}

func replaceRelayIDs(tx *sql.Tx, clientID int64, ids [][]byte) error {
	if _, err := tx.Exec(`DELETE FROM relay_ids WHERE client_fk=?`, clientID); err != nil {
		return err
	}
	for _, rid := range ids {
		if _, err := tx.Exec(`INSERT OR IGNORE INTO relay_ids(client_fk, relay_id) VALUES (?, ?)`, clientID, hex.EncodeToString(rid)); err != nil {
			return err
		}
	}
	return nil
}

// FindLeases implements Store's five query modes as SQL reads.
func (s *SQLStore) FindLeases(q Query) (int, []Row, error) {
	var rows *sql.Rows
	var err error

	switch q.Type {
	case codec.QueryByAddress:
		target := canonicalIP(q.Address)
		rows, err = s.db.Query(`SELECT DISTINCT c.id FROM clients c
			LEFT JOIN addresses a ON a.client_fk=c.id
			LEFT JOIN prefixes p ON p.client_fk=c.id
			WHERE (a.address=? OR (p.first_address<=? AND p.last_address>=?))
			AND (? = '' OR c.link_address=?)`,
			target, target, target, canonicalIP(q.LinkAddress), canonicalIP(q.LinkAddress))
	case codec.QueryByClientID:
		duid, derr := duidHex(q.ClientDUID)
		if derr != nil {
			return -1, nil, derr
		}
		rows, err = s.db.Query(`SELECT id FROM clients WHERE client_id=? AND (? = '' OR link_address=?)`,
			duid, canonicalIP(q.LinkAddress), canonicalIP(q.LinkAddress))
	case codec.QueryByRelayID:
		raw, derr := q.RelayDUID.Save()
		if derr != nil {
			return -1, nil, derr
		}
		rows, err = s.db.Query(`SELECT DISTINCT c.id FROM clients c JOIN relay_ids r ON r.client_fk=c.id
			WHERE r.relay_id=? AND (? = '' OR c.link_address=?)`,
			hex.EncodeToString(raw), canonicalIP(q.LinkAddress), canonicalIP(q.LinkAddress))
	case codec.QueryByLinkAddress:
		link := canonicalIP(q.LinkAddress)
		if link == "" || isUnspecified(q.LinkAddress) {
			rows, err = s.db.Query(`SELECT id FROM clients`)
		} else {
			rows, err = s.db.Query(`SELECT id FROM clients WHERE link_address=?`, link)
		}
	case codec.QueryByRemoteID:
		key := fmt.Sprintf("%d:%s", q.RemoteEnterprise, hex.EncodeToString(q.RemoteOpaque))
		rows, err = s.db.Query(`SELECT DISTINCT c.id FROM clients c JOIN remote_ids r ON r.client_fk=c.id
			WHERE r.remote_id=? AND (? = '' OR c.link_address=?)`,
			key, canonicalIP(q.LinkAddress), canonicalIP(q.LinkAddress))
	default:
		return -1, nil, nil
	}
	if err != nil {
		return -1, nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return -1, nil, err
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return 0, nil, nil
	}

	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	out := make([]Row, 0, len(ids))
	for _, id := range ids {
		rec, err := s.loadClientRecord(id)
		if err != nil {
			return -1, nil, err
		}
		out = append(out, Row{LinkAddress: rec.LinkAddress, ClientData: BuildClientData(rec, q, s.Filter, now)})
	}
	return len(out), out, nil
}

func (s *SQLStore) loadClientRecord(id int64) (*ClientRecord, error) {
	rec := &ClientRecord{}
	var clientIDHex, linkHex string
	var optsBlob, relayData []byte
	var lastInteraction int64
	if err := s.db.QueryRow(`SELECT client_id, link_address, options, last_interaction, relay_data FROM clients WHERE id=?`, id).
		Scan(&clientIDHex, &linkHex, &optsBlob, &lastInteraction, &relayData); err != nil {
		return nil, err
	}
	rawDUID, err := hex.DecodeString(clientIDHex)
	if err != nil {
		return nil, err
	}
	duid, err := codec.DecodeDUID(rawDUID)
	if err != nil {
		return nil, err
	}
	rec.ClientDUID = duid
	rec.LinkAddress = decodeCanonicalIP(linkHex)
	rec.LastInteraction = time.Unix(lastInteraction, 0)
	rec.RelayData = relayData
	if opts, err := codec.DecodeOptions(optsBlob, codec.DefaultOptionFactory); err == nil {
		rec.Options = opts
	}

	addrRows, err := s.db.Query(`SELECT address, preferred_lifetime_end, valid_lifetime_end, options FROM addresses WHERE client_fk=?`, id)
	if err != nil {
		return nil, err
	}
	for addrRows.Next() {
		var addrHex string
		var preferred, valid int64
		var blob []byte
		if err := addrRows.Scan(&addrHex, &preferred, &valid, &blob); err != nil {
			addrRows.Close()
			return nil, err
		}
		opts, _ := codec.DecodeOptions(blob, codec.DefaultOptionFactory)
		rec.Addresses = append(rec.Addresses, AddressLease{
			Address:              decodeCanonicalIP(addrHex),
			PreferredLifetimeEnd: time.Unix(preferred, 0),
			ValidLifetimeEnd:     time.Unix(valid, 0),
			Options:              opts,
		})
	}
	addrRows.Close()

	pfxRows, err := s.db.Query(`SELECT first_address, last_address, prefix_length, preferred_lifetime_end, valid_lifetime_end, options FROM prefixes WHERE client_fk=?`, id)
	if err != nil {
		return nil, err
	}
	for pfxRows.Next() {
		var firstHex, lastHex string
		var length uint8
		var preferred, valid int64
		var blob []byte
		if err := pfxRows.Scan(&firstHex, &lastHex, &length, &preferred, &valid, &blob); err != nil {
			pfxRows.Close()
			return nil, err
		}
		opts, _ := codec.DecodeOptions(blob, codec.DefaultOptionFactory)
		rec.Prefixes = append(rec.Prefixes, PrefixLease{
			First:                decodeCanonicalIP(firstHex),
			Last:                 decodeCanonicalIP(lastHex),
			PrefixLength:         length,
			PreferredLifetimeEnd: time.Unix(preferred, 0),
			ValidLifetimeEnd:     time.Unix(valid, 0),
			Options:              opts,
		})
	}
	pfxRows.Close()

	return rec, nil
}

func decodeCanonicalIP(hexStr string) []byte {
	b, err := hex.DecodeString(hexStr)
	if err != nil {
		return nil
	}
	return b
}
