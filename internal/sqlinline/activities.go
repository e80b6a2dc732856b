package sqlinline

const QSelectDealHeader = `--sql ec51f0b5-2fef-410d-a2fb-adfe2a1498cb
select owner, creation, coalesce(lead, '')
from crm_deals
where name = $1::text;
`

const QSelectLeadHeader = `--sql 5200111e-6ef8-49ad-af26-7a1eb4b4bb5f
select owner, creation
from crm_leads
where name = $1::text;
`

const QListVersions = `--sql 1943b1da-b992-4558-8e9c-beb745ef4ed7
select name::text, owner, creation, data
from versions
where ref_doctype = $1::text and docname = $2::text
order by creation asc;
`

const QListComments = `--sql da965e8e-f2b0-4f30-aeb3-fed1528b472e
select name::text, comment_type, content, owner, creation
from comments
where reference_doctype = $1::text and reference_name = $2::text
  and comment_type = any($3::text[])
order by creation asc;
`

const QListCommunications = `--sql a8208dbd-4306-4b39-8946-cb780ef25755
select name::text, communication_type, communication_date, subject, content, sender_full_name,
       sender, recipients, cc, bcc, read_by_recipient, delivery_status, creation
from communications
where reference_doctype = $1::text and reference_name = $2::text
  and communication_type in ('Communication', 'Automated Message')
order by creation asc;
`

const QListAttachments = `--sql f3cbeba7-7850-4d39-b3ee-56ae2835a0c8
select name::text, file_name, file_type, file_url, file_size, is_private, modified, creation, owner
from files
where attached_to_doctype = $1::text and attached_to_name = $2::text
order by creation asc;
`

const QListCallLogsByReference = `--sql 14f66e06-f41f-4fe0-a932-6ff773c24f81
select name, caller, receiver, from_number, to_number, duration, start_time, end_time,
       status, type, recording_url, creation, note, '' as link_doctype, '' as link_name
from call_logs
where reference_docname = $1::text
order by creation asc;
`

const QListLinkedCallLogs = `--sql 9d94b9e0-0977-4124-b9d3-8971b17be103
select c.name, c.caller, c.receiver, c.from_number, c.to_number, c.duration, c.start_time, c.end_time,
       c.status, c.type, c.recording_url, c.creation, c.note, l.link_doctype, l.link_name
from call_logs c
join dynamic_links l on l.parent = c.name
where c.name in (
    select parent from dynamic_links
    where link_name = $1::text and parenttype = 'CRM Call Log'
)
order by c.creation asc;
`

const QListNotesByReference = `--sql de303924-6373-4006-baeb-d138299e9a7b
select name, title, content, owner, modified
from notes
where reference_docname = $1::text
order by modified desc;
`

const QListNotesByName = `--sql 7003013a-4f85-492d-84f4-1abaddfae2a6
select name, title, content, owner, modified
from notes
where name = any($1::text[])
order by modified desc;
`

const QListTasksByReference = `--sql a86af115-9763-4d7f-88ee-f200dcca68ca
select name, title, description, assigned_to, due_date, priority, status, modified
from tasks
where reference_docname = $1::text
order by modified desc;
`

const QListTasksByName = `--sql c2e8f2cc-ef70-47e4-a013-15e331f9fb95
select name, title, description, assigned_to, due_date, priority, status, modified
from tasks
where name = any($1::text[])
order by modified desc;
`
