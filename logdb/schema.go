// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

// create tables for contract events and reward token transfers
const eventTableSchema = `
create table if not exists event (
	height integer,
	eventIndex integer,
	txID blob(32),
	caller blob(20),
	address blob(20),
	name text,
	data blob,
	primary key (height, eventIndex)
);

create index if not exists eventTxIndex on event(txID);
create index if not exists eventCallerIndex on event(caller);
create index if not exists eventNameIndex on event(name);
`

const transferTableSchema = `
create table if not exists transfer (
	height integer,
	transferIndex integer,
	txID blob(32),
	sender blob(20),
	recipient blob(20),
	amount blob(32),
	primary key (height, transferIndex)
);

create index if not exists transferTxIndex on transfer(txID);
create index if not exists transferSenderIndex on transfer(sender);
create index if not exists transferRecipientIndex on transfer(recipient);
`
